package journey

import "github.com/SAP-F-2025/toeic-session-service/internal/models"

// Action is implemented only by the types in this file.
type Action interface {
	actionName() string
}

type SetLoading struct{ Loading bool }

type SetError struct{ Err *Error }

type SetJourneyData struct{ Journey *models.Journey }

type SetCurrentJourney struct{ ID *uint }

type SetCurrentStage struct{ ID *uint }

type SetCurrentLesson struct{ ID *uint }

type SetStages struct{ Stages []models.Stage }

type SetLessons struct{ Lessons []models.Day }

type SetTests struct{ Tests []models.FinalTest }

type ResetState struct{}

func (SetLoading) actionName() string        { return "SET_LOADING" }
func (SetError) actionName() string          { return "SET_ERROR" }
func (SetJourneyData) actionName() string    { return "SET_JOURNEY_DATA" }
func (SetCurrentJourney) actionName() string { return "SET_CURRENT_JOURNEY" }
func (SetCurrentStage) actionName() string   { return "SET_CURRENT_STAGE" }
func (SetCurrentLesson) actionName() string  { return "SET_CURRENT_LESSON" }
func (SetStages) actionName() string         { return "SET_STAGES" }
func (SetLessons) actionName() string        { return "SET_LESSONS" }
func (SetTests) actionName() string          { return "SET_TESTS" }
func (ResetState) actionName() string        { return "RESET_STATE" }

// Name returns the wire name of an action, used in logs and events.
func Name(a Action) string {
	return a.actionName()
}

// Reduce returns the state that follows s after a. It never mutates s.
//
// A payload action marks the load as finished: loading stops and any previous
// error is dropped. SetError also stops loading.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetLoading:
		s.IsLoading = act.Loading
	case SetError:
		s.IsLoading = false
		s.Error = act.Err
	case SetJourneyData:
		s.JourneyData = act.Journey
		s = loaded(s)
	case SetCurrentJourney:
		s.CurrentJourneyID = copyID(act.ID)
	case SetCurrentStage:
		s.CurrentStageID = copyID(act.ID)
	case SetCurrentLesson:
		s.CurrentLessonID = copyID(act.ID)
	case SetStages:
		s.Stages = act.Stages
		s = loaded(s)
	case SetLessons:
		s.Lessons = act.Lessons
		s = loaded(s)
	case SetTests:
		s.Tests = act.Tests
		s = loaded(s)
	case ResetState:
		return InitialState()
	}
	return s
}

func loaded(s State) State {
	s.IsLoading = false
	s.Error = nil
	return s
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
