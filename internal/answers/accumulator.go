package answers

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrReviewMode    = errors.New("answers are read-only in review mode")
	ErrNoQuestion    = errors.New("no active question")
	ErrForeignAnswer = errors.New("answer does not belong to the active question")
)

// ChangeFunc receives a copy of the full answer map after every accepted selection.
type ChangeFunc func(AnswerMap)

// Accumulator collects selections for the question currently on screen. It
// keeps no state beyond the active question; the parent owns persistence.
type Accumulator struct {
	mu       sync.Mutex
	question *Question
	review   bool
	answers  AnswerMap
	onChange ChangeFunc
}

func NewAccumulator(onChange ChangeFunc) *Accumulator {
	return &Accumulator{
		answers:  make(AnswerMap),
		onChange: onChange,
	}
}

// SetQuestion switches the active question and seeds the local map with the
// prior answers that belong to it. Entries for other questions are dropped.
func (a *Accumulator) SetQuestion(q Question, prior AnswerMap) {
	a.mu.Lock()
	defer a.mu.Unlock()

	qc := q
	a.question = &qc
	a.answers = prior.ForQuestion(q.ID)
}

func (a *Accumulator) SetReview(review bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.review = review
}

func (a *Accumulator) Review() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.review
}

// OnAnswer records letter for key and forwards the updated map. In review mode
// nothing changes and ErrReviewMode is returned.
func (a *Accumulator) OnAnswer(key QuestionKey, letter Letter) error {
	a.mu.Lock()
	if a.review {
		a.mu.Unlock()
		return ErrReviewMode
	}
	if a.question == nil {
		a.mu.Unlock()
		return ErrNoQuestion
	}

	options, ok := a.question.OptionsFor(key)
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrForeignAnswer, key)
	}
	idx := letter.Index()
	if idx < 0 || idx >= len(options) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %q for %s", ErrInvalidLetter, letter, key)
	}

	a.answers[key] = letter
	snapshot := a.answers.Clone()
	onChange := a.onChange
	a.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	return nil
}

// HasAnswered reports whether every key of the active question has a selection.
func (a *Accumulator) HasAnswered() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.question == nil {
		return false
	}
	for _, k := range a.question.Keys() {
		if _, ok := a.answers[k]; !ok {
			return false
		}
	}
	return true
}

func (a *Accumulator) Answers() AnswerMap {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answers.Clone()
}
