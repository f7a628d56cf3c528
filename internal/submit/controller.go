package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Mode selects how the submit button behaves.
type Mode string

const (
	ModeLesson    Mode = "LESSON"
	ModeFinalTest Mode = "FINAL_TEST"
)

func (m Mode) Valid() bool {
	return m == ModeLesson || m == ModeFinalTest
}

const (
	LabelCompleteLesson = "Complete lesson"
	LabelSubmitTest     = "Submit test"
)

// Phase is the position in idle -> (confirming) -> submitting -> finalized.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitting Phase = "submitting"
	PhaseFinalized  Phase = "finalized"
)

var (
	ErrDisabled       = errors.New("submit is disabled")
	ErrNotConfirming  = errors.New("no submission awaiting confirmation")
	ErrAlreadyDone    = errors.New("session already finalized")
	ErrUnknownMode    = errors.New("unknown session mode")
	ErrMissingHandler = errors.New("submit handler not configured")
)

// Inputs mirror what the session header knows about the current position.
type Inputs struct {
	Mode                Mode
	RequireConfirmation bool
	IsLastQuestion      bool
	HasAnswered         bool
	IsSubmitting        bool
}

// Outcome tells the caller what a press did.
type Outcome string

const (
	OutcomeNext       Outcome = "next"
	OutcomeConfirm    Outcome = "confirm"
	OutcomeFinalized  Outcome = "finalized"
	OutcomeSubmitFail Outcome = "failed"
)

// Handlers are invoked by Press/Confirm. OnSubmit may block; the controller
// stays in PhaseSubmitting for its duration.
type Handlers struct {
	OnSubmit func(ctx context.Context) error
	OnNext   func() error
}

type Controller struct {
	mu       sync.Mutex
	inputs   Inputs
	phase    Phase
	lastErr  error
	handlers Handlers
}

func NewController(inputs Inputs, handlers Handlers) (*Controller, error) {
	if !inputs.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, inputs.Mode)
	}
	if handlers.OnSubmit == nil {
		return nil, ErrMissingHandler
	}
	return &Controller{inputs: inputs, phase: PhaseIdle, handlers: handlers}, nil
}

// Update replaces the position-dependent inputs. Mode is fixed for the
// controller's lifetime.
func (c *Controller) Update(isLastQuestion, hasAnswered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs.IsLastQuestion = isLastQuestion
	c.inputs.HasAnswered = hasAnswered
}

// SetSubmitting lets a caller that submits out of band hold the button disabled.
func (c *Controller) SetSubmitting(submitting bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs.IsSubmitting = submitting
}

func (c *Controller) Inputs() Inputs {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := c.inputs
	in.IsSubmitting = in.IsSubmitting || c.phase == PhaseSubmitting
	return in
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastError is the error of the most recent failed submission, cleared on the next press.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabledLocked()
}

func (c *Controller) enabledLocked() bool {
	if c.phase == PhaseSubmitting || c.phase == PhaseFinalized || c.inputs.IsSubmitting {
		return false
	}
	switch c.inputs.Mode {
	case ModeLesson:
		return c.inputs.HasAnswered
	case ModeFinalTest:
		return true
	}
	return false
}

func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputs.Mode == ModeFinalTest {
		return LabelSubmitTest
	}
	return LabelCompleteLesson
}

// CanExit is true in every phase.
func (c *Controller) CanExit() bool { return true }

// CanPause is true until the session is finalized.
func (c *Controller) CanPause() bool {
	return c.Phase() != PhaseFinalized
}

// Press handles a tap on the submit button.
func (c *Controller) Press(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.phase == PhaseFinalized {
		c.mu.Unlock()
		return "", ErrAlreadyDone
	}
	if !c.enabledLocked() {
		c.mu.Unlock()
		return "", ErrDisabled
	}
	c.lastErr = nil

	if c.inputs.Mode == ModeLesson && !c.inputs.IsLastQuestion {
		onNext := c.handlers.OnNext
		c.mu.Unlock()
		if onNext != nil {
			if err := onNext(); err != nil {
				return "", err
			}
		}
		return OutcomeNext, nil
	}

	if c.inputs.RequireConfirmation {
		c.phase = PhaseConfirming
		c.mu.Unlock()
		return OutcomeConfirm, nil
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	return c.submit(ctx)
}

// Confirm finalizes a press that was held for confirmation.
func (c *Controller) Confirm(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.phase != PhaseConfirming {
		c.mu.Unlock()
		return "", ErrNotConfirming
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	return c.submit(ctx)
}

func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseConfirming {
		return ErrNotConfirming
	}
	c.phase = PhaseIdle
	return nil
}

// Finalize bypasses the button, e.g. when time runs out. It is a no-op once
// finalized and fails while another submission is in flight.
func (c *Controller) Finalize(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch c.phase {
	case PhaseFinalized:
		c.mu.Unlock()
		return OutcomeFinalized, nil
	case PhaseSubmitting:
		c.mu.Unlock()
		return "", ErrDisabled
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	return c.submit(ctx)
}

func (c *Controller) submit(ctx context.Context) (Outcome, error) {
	err := c.handlers.OnSubmit(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseIdle
		c.lastErr = err
		return OutcomeSubmitFail, err
	}
	c.phase = PhaseFinalized
	return OutcomeFinalized, nil
}
