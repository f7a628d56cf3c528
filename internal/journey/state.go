package journey

import (
	"fmt"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
)

type ErrorKind string

const (
	ErrorNetwork    ErrorKind = "network"
	ErrorNotFound   ErrorKind = "not_found"
	ErrorValidation ErrorKind = "validation"
)

// Error is the failure recorded by the last load.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// State is the journey progress held for one learner. The zero value is the
// initial state.
type State struct {
	CurrentJourneyID *uint `json:"current_journey_id"`
	CurrentStageID   *uint `json:"current_stage_id"`
	CurrentLessonID  *uint `json:"current_lesson_id"`

	IsLoading bool   `json:"is_loading"`
	Error     *Error `json:"error"`

	JourneyData *models.Journey    `json:"journey_data"`
	Stages      []models.Stage     `json:"stages"`
	Lessons     []models.Day       `json:"lessons"`
	Tests       []models.FinalTest `json:"tests"`
}

// InitialState is what ResetState restores.
func InitialState() State {
	return State{}
}
