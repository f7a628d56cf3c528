package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/journey"
	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
)

// JourneyService loads journey content into the learner's journey store.
// Every load returns the store state after the load finished.
type JourneyService interface {
	LoadJourney(ctx context.Context, userID string, journeyID uint) (journey.State, error)
	LoadStages(ctx context.Context, userID string, journeyID uint) (journey.State, error)
	LoadLessons(ctx context.Context, userID string, stageID uint) (journey.State, error)
	LoadTests(ctx context.Context, userID string, stageID uint) (journey.State, error)

	SelectStage(ctx context.Context, userID string, stageID uint) (journey.State, error)
	SelectLesson(ctx context.Context, userID string, lessonID uint) (journey.State, error)

	State(userID string) journey.State
	Reset(userID string) journey.State

	// RecordResult applies a finished session to journey progress.
	RecordResult(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error
}

// SessionService runs lesson and final-test sessions.
type SessionService interface {
	Start(ctx context.Context, userID string, req *StartSessionRequest) (*session.Snapshot, error)
	Get(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	Goto(ctx context.Context, userID, sessionID string, req *GotoRequest) (*session.Snapshot, error)
	Answer(ctx context.Context, userID, sessionID string, req *AnswerRequest) (*session.Snapshot, error)
	Pause(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	Resume(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	AddTime(ctx context.Context, userID, sessionID string, req *AddTimeRequest) (*session.Snapshot, error)

	Submit(ctx context.Context, userID, sessionID string) (*SubmitResponse, error)
	Confirm(ctx context.Context, userID, sessionID string) (*SubmitResponse, error)
	Cancel(ctx context.Context, userID, sessionID string) (*session.Snapshot, error)
	Exit(ctx context.Context, userID, sessionID string) error

	Result(ctx context.Context, userID, sessionID string) (*session.Result, error)
	History(ctx context.Context, userID string, filters repositories.SessionFilters) ([]models.SessionRecord, int64, error)

	// Recover restarts the timers of sessions left open by a previous process.
	Recover(ctx context.Context) (int, error)
	Shutdown()
}

// ExportService renders graded sessions as spreadsheets.
type ExportService interface {
	ExportSession(ctx context.Context, userID, sessionID string) (*ExportFile, error)
}

type ServiceManager interface {
	Journey() JourneyService
	Session() SessionService
	Export() ExportService
}
