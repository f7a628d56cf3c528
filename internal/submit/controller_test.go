package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	submits int
	nexts   int
	fail    error
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnSubmit: func(context.Context) error {
			r.submits++
			return r.fail
		},
		OnNext: func() error {
			r.nexts++
			return nil
		},
	}
}

func newController(t *testing.T, in Inputs, r *recorder) *Controller {
	t.Helper()
	c, err := NewController(in, r.handlers())
	require.NoError(t, err)
	return c
}

func TestNewController_Validation(t *testing.T) {
	_, err := NewController(Inputs{Mode: "QUIZ"}, Handlers{OnSubmit: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = NewController(Inputs{Mode: ModeLesson}, Handlers{})
	assert.ErrorIs(t, err, ErrMissingHandler)
}

func TestLessonMode_DisabledUntilAnswered(t *testing.T) {
	r := &recorder{}
	c := newController(t, Inputs{Mode: ModeLesson}, r)

	assert.False(t, c.Enabled())
	assert.Equal(t, LabelCompleteLesson, c.Label())
	_, err := c.Press(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)

	c.Update(false, true)
	assert.True(t, c.Enabled())
	assert.Equal(t, LabelCompleteLesson, c.Label(), "label does not depend on position")
}

func TestLessonMode_AdvancesUntilLastQuestion(t *testing.T) {
	r := &recorder{}
	c := newController(t, Inputs{Mode: ModeLesson, HasAnswered: true}, r)

	out, err := c.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNext, out)
	assert.Equal(t, 1, r.nexts)
	assert.Equal(t, PhaseIdle, c.Phase())

	c.Update(true, true)
	out, err = c.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)
	assert.Equal(t, 1, r.submits)
	assert.Equal(t, PhaseFinalized, c.Phase())
}

func TestFinalTest_AlwaysFinalizes(t *testing.T) {
	r := &recorder{}
	c := newController(t, Inputs{Mode: ModeFinalTest}, r)

	assert.True(t, c.Enabled(), "enabled without an answer")
	assert.Equal(t, LabelSubmitTest, c.Label())

	out, err := c.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)
	assert.Zero(t, r.nexts)

	_, err = c.Press(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyDone)
	assert.False(t, c.CanPause())
	assert.True(t, c.CanExit())
}

func TestFinalTest_DisabledWhileSubmitting(t *testing.T) {
	c := newController(t, Inputs{Mode: ModeFinalTest, IsSubmitting: true}, &recorder{})
	assert.False(t, c.Enabled())
	assert.True(t, c.Inputs().IsSubmitting)

	c.SetSubmitting(false)
	assert.True(t, c.Enabled())
}

func TestSubmitFailure_ReturnsToIdle(t *testing.T) {
	r := &recorder{fail: errors.New("backend unavailable")}
	c := newController(t, Inputs{Mode: ModeFinalTest}, r)

	out, err := c.Press(context.Background())
	assert.Error(t, err)
	assert.Equal(t, OutcomeSubmitFail, out)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.EqualError(t, c.LastError(), "backend unavailable")

	r.fail = nil
	out, err = c.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)
	assert.NoError(t, c.LastError())
}

func TestRequireConfirmation(t *testing.T) {
	r := &recorder{}
	c := newController(t, Inputs{Mode: ModeFinalTest, RequireConfirmation: true}, r)

	out, err := c.Press(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirm, out)
	assert.Equal(t, PhaseConfirming, c.Phase())
	assert.Zero(t, r.submits)

	require.NoError(t, c.Cancel())
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.ErrorIs(t, c.Cancel(), ErrNotConfirming)

	_, err = c.Press(context.Background())
	require.NoError(t, err)
	out, err = c.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)
	assert.Equal(t, 1, r.submits)
}

func TestFinalize_IsIdempotent(t *testing.T) {
	r := &recorder{}
	c := newController(t, Inputs{Mode: ModeLesson}, r)

	out, err := c.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)

	out, err = c.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFinalized, out)
	assert.Equal(t, 1, r.submits)
}
