package services

import (
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
)

// StartSessionRequest starts a lesson (LessonID) or a final test (FinalTestID).
type StartSessionRequest struct {
	Mode        string `json:"mode" validate:"required,session_mode"`
	LessonID    *uint  `json:"lesson_id" validate:"omitempty,min=1"`
	FinalTestID *uint  `json:"final_test_id" validate:"omitempty,min=1"`
}

type GotoRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type AnswerRequest struct {
	Key    string `json:"key" validate:"required,question_key"`
	Letter string `json:"letter" validate:"required,answer_letter"`
}

type AddTimeRequest struct {
	Seconds int `json:"seconds" validate:"required,min=1,max=3600"`
}

type SubmitResponse struct {
	Outcome submit.Outcome    `json:"outcome"`
	Session *session.Snapshot `json:"session"`
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
