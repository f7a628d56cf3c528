package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
)

type JourneyPostgreSQL struct {
	db *gorm.DB
}

func NewJourneyPostgreSQL(db *gorm.DB) repositories.JourneyRepository {
	return &JourneyPostgreSQL{db: db}
}

func (j *JourneyPostgreSQL) GetJourney(ctx context.Context, tx *gorm.DB, id uint) (*models.Journey, error) {
	db := j.getDB(tx)
	var journey models.Journey
	if err := db.WithContext(ctx).First(&journey, id).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (j *JourneyPostgreSQL) GetActiveJourneyByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Journey, error) {
	db := j.getDB(tx)
	var journey models.Journey
	if err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ProgressInProgress).
		Order("started_at DESC").
		First(&journey).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

func (j *JourneyPostgreSQL) ListStages(ctx context.Context, tx *gorm.DB, journeyID uint) ([]models.Stage, error) {
	db := j.getDB(tx)
	var stages []models.Stage
	if err := db.WithContext(ctx).
		Where("journey_id = ?", journeyID).
		Order(`"order" ASC`).
		Find(&stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

func (j *JourneyPostgreSQL) GetStage(ctx context.Context, tx *gorm.DB, id uint) (*models.Stage, error) {
	db := j.getDB(tx)
	var stage models.Stage
	if err := db.WithContext(ctx).First(&stage, id).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

func (j *JourneyPostgreSQL) ListDays(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.Day, error) {
	db := j.getDB(tx)
	var days []models.Day
	if err := db.WithContext(ctx).
		Where("stage_id = ?", stageID).
		Order(`"order" ASC`).
		Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

func (j *JourneyPostgreSQL) GetDay(ctx context.Context, tx *gorm.DB, id uint) (*models.Day, error) {
	db := j.getDB(tx)
	var day models.Day
	if err := db.WithContext(ctx).First(&day, id).Error; err != nil {
		return nil, err
	}
	return &day, nil
}

func (j *JourneyPostgreSQL) ListFinalTests(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.FinalTest, error) {
	db := j.getDB(tx)
	var tests []models.FinalTest
	if err := db.WithContext(ctx).Where("stage_id = ?", stageID).Order("id ASC").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (j *JourneyPostgreSQL) GetFinalTest(ctx context.Context, tx *gorm.DB, id uint) (*models.FinalTest, error) {
	db := j.getDB(tx)
	var test models.FinalTest
	if err := db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (j *JourneyPostgreSQL) GetDayQuestions(ctx context.Context, tx *gorm.DB, dayID uint) ([]models.Question, error) {
	return j.questions(ctx, tx, "day_id = ?", dayID)
}

func (j *JourneyPostgreSQL) GetFinalTestQuestions(ctx context.Context, tx *gorm.DB, finalTestID uint) ([]models.Question, error) {
	return j.questions(ctx, tx, "final_test_id = ?", finalTestID)
}

func (j *JourneyPostgreSQL) questions(ctx context.Context, tx *gorm.DB, where string, id uint) ([]models.Question, error) {
	db := j.getDB(tx)
	var questions []models.Question
	if err := db.WithContext(ctx).Where(where, id).Order(`"order" ASC, id ASC`).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (j *JourneyPostgreSQL) UpdateDayStatus(ctx context.Context, tx *gorm.DB, dayID uint, status models.ProgressStatus) error {
	db := j.getDB(tx)
	return db.WithContext(ctx).Model(&models.Day{}).Where("id = ?", dayID).Update("status", status).Error
}

func (j *JourneyPostgreSQL) UpdateStageProgress(ctx context.Context, tx *gorm.DB, stageID uint, status models.ProgressStatus, score *float64) error {
	db := j.getDB(tx)
	updates := map[string]interface{}{"status": status}
	if score != nil {
		updates["score"] = *score
	}
	return db.WithContext(ctx).Model(&models.Stage{}).Where("id = ?", stageID).Updates(updates).Error
}

// UnlockNextStage moves the stage following stage (by order) from locked to in progress.
func (j *JourneyPostgreSQL) UnlockNextStage(ctx context.Context, tx *gorm.DB, stage *models.Stage) error {
	db := j.getDB(tx)
	return db.WithContext(ctx).Model(&models.Stage{}).
		Where(`journey_id = ? AND "order" = ? AND status = ?`, stage.JourneyID, stage.Order+1, models.ProgressLocked).
		Update("status", models.ProgressInProgress).Error
}

func (j *JourneyPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return j.db
}
