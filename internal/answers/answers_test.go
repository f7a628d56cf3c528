package answers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourOptions(correct int) []Option {
	opts := make([]Option, 4)
	for i := range opts {
		opts[i] = Option{Text: string(rune('w' + i)), IsCorrect: i == correct}
	}
	return opts
}

func TestLetterFromIndex(t *testing.T) {
	l, err := LetterFromIndex(2)
	require.NoError(t, err)
	assert.Equal(t, Letter("C"), l)
	assert.Equal(t, 2, l.Index())

	_, err = LetterFromIndex(-1)
	assert.ErrorIs(t, err, ErrInvalidLetter)
	assert.Equal(t, -1, Letter("c").Index())
	assert.False(t, Letter("AB").Valid())
}

func TestQuestionKey_RoundTrip(t *testing.T) {
	k, err := ParseKey("q1_s2")
	require.NoError(t, err)
	assert.Equal(t, SubKey("q1", "s2"), k)
	assert.Equal(t, "q1_s2", k.String())

	k, err = ParseKey("q1")
	require.NoError(t, err)
	assert.Equal(t, Key("q1"), k)

	_, err = ParseKey("q1_")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseKey("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAnswerMap_JSONUsesWireKeys(t *testing.T) {
	m := AnswerMap{Key("q1"): "A", SubKey("q2", "s1"): "D"}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"q1":"A","q2_s1":"D"}`, string(b))

	var back AnswerMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, m, back)
}

func TestAccumulator_ForwardsFullMap(t *testing.T) {
	var forwarded []AnswerMap
	acc := NewAccumulator(func(m AnswerMap) { forwarded = append(forwarded, m) })

	q := Question{ID: "q1", SubQuestions: []SubQuestion{
		{ID: "s1", Options: fourOptions(0)},
		{ID: "s2", Options: fourOptions(1)},
	}}
	acc.SetQuestion(q, nil)
	assert.False(t, acc.HasAnswered())

	require.NoError(t, acc.OnAnswer(SubKey("q1", "s1"), "B"))
	require.NoError(t, acc.OnAnswer(SubKey("q1", "s2"), "C"))

	require.Len(t, forwarded, 2)
	assert.Equal(t, AnswerMap{SubKey("q1", "s1"): "B"}, forwarded[0])
	assert.Equal(t, AnswerMap{SubKey("q1", "s1"): "B", SubKey("q1", "s2"): "C"}, forwarded[1])
	assert.True(t, acc.HasAnswered())

	// The forwarded map is a copy.
	forwarded[1][SubKey("q1", "s1")] = "D"
	assert.Equal(t, Letter("B"), acc.Answers()[SubKey("q1", "s1")])
}

func TestAccumulator_ReviewModeIsNoOp(t *testing.T) {
	calls := 0
	acc := NewAccumulator(func(AnswerMap) { calls++ })
	acc.SetQuestion(Question{ID: "q1", Options: fourOptions(2)}, AnswerMap{Key("q1"): "A"})
	acc.SetReview(true)

	err := acc.OnAnswer(Key("q1"), "C")
	assert.ErrorIs(t, err, ErrReviewMode)
	assert.Zero(t, calls)
	assert.Equal(t, AnswerMap{Key("q1"): "A"}, acc.Answers())
}

func TestAccumulator_SetQuestionDropsPreviousSelections(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.SetQuestion(Question{ID: "q1", Options: fourOptions(0)}, nil)
	require.NoError(t, acc.OnAnswer(Key("q1"), "A"))

	prior := AnswerMap{Key("q1"): "A", Key("q2"): "B"}
	acc.SetQuestion(Question{ID: "q2", Options: fourOptions(0)}, prior)
	assert.Equal(t, AnswerMap{Key("q2"): "B"}, acc.Answers())
}

func TestAccumulator_RejectsForeignKeysAndBadLetters(t *testing.T) {
	acc := NewAccumulator(nil)
	assert.ErrorIs(t, acc.OnAnswer(Key("q1"), "A"), ErrNoQuestion)

	acc.SetQuestion(Question{ID: "q1", Options: fourOptions(0)}, nil)
	assert.ErrorIs(t, acc.OnAnswer(Key("q9"), "A"), ErrForeignAnswer)
	assert.ErrorIs(t, acc.OnAnswer(SubKey("q1", "s1"), "A"), ErrForeignAnswer)
	assert.ErrorIs(t, acc.OnAnswer(Key("q1"), "E"), ErrInvalidLetter)
	assert.Empty(t, acc.Answers())
}

func TestGradeQuestion_CorrectAndUnanswered(t *testing.T) {
	q := Question{ID: "q1", Options: fourOptions(2)}

	selected, err := LetterFromIndex(2)
	require.NoError(t, err)
	graded := GradeQuestion(q, AnswerMap{Key("q1"): selected})
	require.Len(t, graded, 1)
	assert.Equal(t, Letter("C"), graded[0].Selected)
	assert.True(t, graded[0].IsCorrect)
	assert.False(t, graded[0].IsNotAnswer)

	graded = GradeQuestion(q, AnswerMap{})
	require.Len(t, graded, 1)
	assert.True(t, graded[0].IsNotAnswer)
	assert.False(t, graded[0].IsCorrect)
	assert.Equal(t, Letter("C"), graded[0].Correct)
}

func TestGrade_Summary(t *testing.T) {
	questions := []Question{
		{ID: "q1", Options: fourOptions(0)},
		{ID: "q2", SubQuestions: []SubQuestion{
			{ID: "s1", Options: fourOptions(1)},
			{ID: "s2", Options: fourOptions(3)},
		}},
		{ID: "q3", Options: fourOptions(2)},
	}
	answers := AnswerMap{
		Key("q1"):          "A",
		SubKey("q2", "s1"): "A",
		SubKey("q2", "s2"): "D",
	}

	results, summary := Grade(questions, answers)
	assert.Len(t, results, 4)
	assert.Equal(t, Summary{Total: 4, Correct: 2, Incorrect: 1, Unanswered: 1, Score: 50}, summary)
}

func TestQuestion_RedactedHidesCorrectness(t *testing.T) {
	q := Question{ID: "q1", Options: fourOptions(1), SubQuestions: []SubQuestion{{ID: "s1", Options: fourOptions(0)}}}
	r := q.Redacted()
	for _, o := range r.Options {
		assert.False(t, o.IsCorrect)
	}
	assert.False(t, r.SubQuestions[0].Options[0].IsCorrect)
	assert.True(t, q.Options[1].IsCorrect, "original must be untouched")
}
