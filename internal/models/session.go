package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	"github.com/SAP-F-2025/toeic-session-service/internal/timer"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSubmitted SessionStatus = "submitted"
	SessionTimedOut  SessionStatus = "timed_out"
	SessionCancelled SessionStatus = "cancelled"
)

func (s SessionStatus) Finished() bool {
	return s == SessionSubmitted || s == SessionTimedOut || s == SessionCancelled
}

// SessionRecord is the persisted form of a lesson or final-test session.
type SessionRecord struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	UserID      string        `json:"user_id" gorm:"not null;size:255;index"`
	Mode        string        `json:"mode" gorm:"not null;size:20"`
	DayID       *uint         `json:"day_id,omitempty" gorm:"index"`
	FinalTestID *uint         `json:"final_test_id,omitempty" gorm:"index"`
	Status      SessionStatus `json:"status" gorm:"not null;size:20;default:active;index"`

	Timer   datatypes.JSON `json:"timer" gorm:"type:jsonb"`   // timer.State
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"` // answers.AnswerMap

	Total      int      `json:"total"`
	Correct    int      `json:"correct"`
	Incorrect  int      `json:"incorrect"`
	Unanswered int      `json:"unanswered"`
	Score      *float64 `json:"score,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (SessionRecord) TableName() string {
	return "session_records"
}

func (r *SessionRecord) SetTimer(s timer.State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.Timer = datatypes.JSON(b)
	return nil
}

func (r *SessionRecord) TimerState() (timer.State, error) {
	var s timer.State
	if len(r.Timer) == 0 {
		return s, nil
	}
	err := json.Unmarshal(r.Timer, &s)
	return s, err
}

func (r *SessionRecord) SetAnswers(m answers.AnswerMap) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	r.Answers = datatypes.JSON(b)
	return nil
}

func (r *SessionRecord) AnswerMap() (answers.AnswerMap, error) {
	m := answers.AnswerMap{}
	if len(r.Answers) == 0 {
		return m, nil
	}
	err := json.Unmarshal(r.Answers, &m)
	return m, err
}

// ApplySummary copies grading totals onto the record.
func (r *SessionRecord) ApplySummary(s answers.Summary) {
	r.Total = s.Total
	r.Correct = s.Correct
	r.Incorrect = s.Incorrect
	r.Unanswered = s.Unanswered
	score := s.Score
	r.Score = &score
}
