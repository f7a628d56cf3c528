package session

import (
	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
	"github.com/SAP-F-2025/toeic-session-service/internal/timer"
)

// Header is what the session header renders: timer, submit button and exit/pause affordances.
type Header struct {
	Label               string       `json:"label"`
	SubmitEnabled       bool         `json:"submit_enabled"`
	Phase               submit.Phase `json:"phase"`
	RequireConfirmation bool         `json:"require_confirmation"`
	CanPause            bool         `json:"can_pause"`
	CanExit             bool         `json:"can_exit"`
	LastError           string       `json:"last_error,omitempty"`
	Timer               *timer.View  `json:"timer,omitempty"`
}

// Snapshot is the client-facing view of a session. Correct options are only
// revealed once the session is in review.
type Snapshot struct {
	ID             string            `json:"id"`
	Mode           submit.Mode       `json:"mode"`
	Index          int               `json:"index"`
	Total          int               `json:"total"`
	IsLastQuestion bool              `json:"is_last_question"`
	HasAnswered    bool              `json:"has_answered"`
	Review         bool              `json:"review"`
	Question       answers.Question  `json:"question"`
	Answers        answers.AnswerMap `json:"answers"`
	Header         Header            `json:"header"`
	Result         *Result           `json:"result,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	index := s.index
	all := s.answers.Clone()
	var result *Result
	if s.result != nil {
		r := *s.result
		result = &r
	}
	s.mu.Unlock()

	review := s.acc.Review()
	q := s.cfg.Questions[index]
	if !review {
		q = q.Redacted()
	}

	header := Header{
		Label:               s.ctrl.Label(),
		SubmitEnabled:       s.ctrl.Enabled(),
		Phase:               s.ctrl.Phase(),
		RequireConfirmation: s.cfg.RequireConfirmation,
		CanPause:            s.ctrl.CanPause(),
		CanExit:             s.ctrl.CanExit(),
	}
	if err := s.ctrl.LastError(); err != nil {
		header.LastError = err.Error()
	}
	if s.timer != nil {
		v := s.timer.State().View()
		header.Timer = &v
	}

	return Snapshot{
		ID:             s.cfg.ID,
		Mode:           s.cfg.Mode,
		Index:          index,
		Total:          len(s.cfg.Questions),
		IsLastQuestion: index == len(s.cfg.Questions)-1,
		HasAnswered:    s.acc.HasAnswered(),
		Review:         review,
		Question:       q,
		Answers:        all,
		Header:         header,
		Result:         result,
	}
}

// Checkpoint is the resumable part of an open session.
type Checkpoint struct {
	Index   int               `json:"index"`
	Started bool              `json:"started"`
	Answers answers.AnswerMap `json:"answers"`
	Timer   *timer.State      `json:"timer,omitempty"`
}

func (s *Session) Checkpoint() Checkpoint {
	s.mu.Lock()
	cp := Checkpoint{Index: s.index, Started: s.started, Answers: s.answers.Clone()}
	s.mu.Unlock()

	if s.timer != nil {
		st := s.timer.State()
		cp.Timer = &st
	}
	return cp
}

// Restore rebuilds an open session from a checkpoint taken on any instance.
func Restore(cfg Config, hooks Hooks, cp Checkpoint) (*Session, error) {
	s, err := New(cfg, hooks)
	if err != nil {
		return nil, err
	}
	if cp.Index < 0 || cp.Index >= len(cfg.Questions) {
		return nil, ErrBadCheckpoint
	}

	if s.timer != nil && cp.Timer != nil {
		t, err := timer.Restore(s.timerConfig(), *cp.Timer)
		if err != nil {
			return nil, err
		}
		s.timer = t
	}

	s.mu.Lock()
	s.started = cp.Started
	if cp.Answers != nil {
		s.answers = cp.Answers.Clone()
	}
	s.mu.Unlock()

	if s.timer != nil && s.timer.Expired() {
		s.mu.Lock()
		s.pendingReason = ReasonTimeout
		s.mu.Unlock()
	}
	if err := s.gotoIndex(cp.Index); err != nil {
		return nil, err
	}
	return s, nil
}
