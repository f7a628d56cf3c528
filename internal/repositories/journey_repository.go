package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
)

// JourneyRepository reads journey content and records learner progress.
type JourneyRepository interface {
	GetJourney(ctx context.Context, tx *gorm.DB, id uint) (*models.Journey, error)
	GetActiveJourneyByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Journey, error)

	ListStages(ctx context.Context, tx *gorm.DB, journeyID uint) ([]models.Stage, error)
	GetStage(ctx context.Context, tx *gorm.DB, id uint) (*models.Stage, error)
	ListDays(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.Day, error)
	GetDay(ctx context.Context, tx *gorm.DB, id uint) (*models.Day, error)
	ListFinalTests(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.FinalTest, error)
	GetFinalTest(ctx context.Context, tx *gorm.DB, id uint) (*models.FinalTest, error)

	// Questions come back in display order.
	GetDayQuestions(ctx context.Context, tx *gorm.DB, dayID uint) ([]models.Question, error)
	GetFinalTestQuestions(ctx context.Context, tx *gorm.DB, finalTestID uint) ([]models.Question, error)

	// Progress
	UpdateDayStatus(ctx context.Context, tx *gorm.DB, dayID uint, status models.ProgressStatus) error
	UpdateStageProgress(ctx context.Context, tx *gorm.DB, stageID uint, status models.ProgressStatus, score *float64) error
	UnlockNextStage(ctx context.Context, tx *gorm.DB, stage *models.Stage) error
}
