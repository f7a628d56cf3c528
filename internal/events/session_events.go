package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a session lifecycle event.
type EventType string

const (
	EventSessionStarted     EventType = "session.started"
	EventSessionTimeWarning EventType = "session.time_warning"
	EventSessionTimeUp      EventType = "session.time_up"
	EventSessionSubmitted   EventType = "session.submitted"
	EventJourneyProgress    EventType = "journey.progress"
)

const (
	eventSource  = "toeic-session-service"
	eventVersion = "1.0"
)

// SessionEvent is the envelope for every published event.
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Mode        string    `json:"mode"`
	DayID       *uint     `json:"day_id,omitempty"`
	FinalTestID *uint     `json:"final_test_id,omitempty"`
	Questions   int       `json:"questions"`
	DurationMs  int64     `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
}

type SessionTimeWarningEvent struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	ThresholdMs int64  `json:"threshold_ms"`
	RemainingMs int64  `json:"remaining_ms"`
}

type SessionTimeUpEvent struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

type SessionSubmittedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Mode        string    `json:"mode"`
	Reason      string    `json:"reason"`
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	Unanswered  int       `json:"unanswered"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type JourneyProgressEvent struct {
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	JourneyID *uint  `json:"journey_id,omitempty"`
	StageID   *uint  `json:"stage_id,omitempty"`
	LessonID  *uint  `json:"lesson_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id.
func NewEvent(eventType EventType, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewSessionStartedEvent(data SessionStartedEvent) *SessionEvent {
	return NewEvent(EventSessionStarted, data)
}

func NewSessionTimeWarningEvent(sessionID, userID string, threshold, remaining time.Duration) *SessionEvent {
	return NewEvent(EventSessionTimeWarning, SessionTimeWarningEvent{
		SessionID:   sessionID,
		UserID:      userID,
		ThresholdMs: threshold.Milliseconds(),
		RemainingMs: remaining.Milliseconds(),
	})
}

func NewSessionTimeUpEvent(sessionID, userID string) *SessionEvent {
	return NewEvent(EventSessionTimeUp, SessionTimeUpEvent{
		SessionID: sessionID,
		UserID:    userID,
		ExpiredAt: time.Now().UTC(),
	})
}

func NewSessionSubmittedEvent(data SessionSubmittedEvent) *SessionEvent {
	return NewEvent(EventSessionSubmitted, data)
}

func NewJourneyProgressEvent(data JourneyProgressEvent) *SessionEvent {
	return NewEvent(EventJourneyProgress, data)
}
