package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
)

// MockJourneyRepository is a mock implementation of JourneyRepository
type MockJourneyRepository struct {
	mock.Mock
}

func (m *MockJourneyRepository) GetJourney(ctx context.Context, tx *gorm.DB, id uint) (*models.Journey, error) {
	args := m.Called(ctx, tx, id)
	j, _ := args.Get(0).(*models.Journey)
	return j, args.Error(1)
}

func (m *MockJourneyRepository) GetActiveJourneyByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Journey, error) {
	args := m.Called(ctx, tx, userID)
	j, _ := args.Get(0).(*models.Journey)
	return j, args.Error(1)
}

func (m *MockJourneyRepository) ListStages(ctx context.Context, tx *gorm.DB, journeyID uint) ([]models.Stage, error) {
	args := m.Called(ctx, tx, journeyID)
	stages, _ := args.Get(0).([]models.Stage)
	return stages, args.Error(1)
}

func (m *MockJourneyRepository) GetStage(ctx context.Context, tx *gorm.DB, id uint) (*models.Stage, error) {
	args := m.Called(ctx, tx, id)
	stage, _ := args.Get(0).(*models.Stage)
	return stage, args.Error(1)
}

func (m *MockJourneyRepository) ListDays(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.Day, error) {
	args := m.Called(ctx, tx, stageID)
	days, _ := args.Get(0).([]models.Day)
	return days, args.Error(1)
}

func (m *MockJourneyRepository) GetDay(ctx context.Context, tx *gorm.DB, id uint) (*models.Day, error) {
	args := m.Called(ctx, tx, id)
	day, _ := args.Get(0).(*models.Day)
	return day, args.Error(1)
}

func (m *MockJourneyRepository) ListFinalTests(ctx context.Context, tx *gorm.DB, stageID uint) ([]models.FinalTest, error) {
	args := m.Called(ctx, tx, stageID)
	tests, _ := args.Get(0).([]models.FinalTest)
	return tests, args.Error(1)
}

func (m *MockJourneyRepository) GetFinalTest(ctx context.Context, tx *gorm.DB, id uint) (*models.FinalTest, error) {
	args := m.Called(ctx, tx, id)
	test, _ := args.Get(0).(*models.FinalTest)
	return test, args.Error(1)
}

func (m *MockJourneyRepository) GetDayQuestions(ctx context.Context, tx *gorm.DB, dayID uint) ([]models.Question, error) {
	args := m.Called(ctx, tx, dayID)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *MockJourneyRepository) GetFinalTestQuestions(ctx context.Context, tx *gorm.DB, finalTestID uint) ([]models.Question, error) {
	args := m.Called(ctx, tx, finalTestID)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *MockJourneyRepository) UpdateDayStatus(ctx context.Context, tx *gorm.DB, dayID uint, status models.ProgressStatus) error {
	args := m.Called(ctx, tx, dayID, status)
	return args.Error(0)
}

func (m *MockJourneyRepository) UpdateStageProgress(ctx context.Context, tx *gorm.DB, stageID uint, status models.ProgressStatus, score *float64) error {
	args := m.Called(ctx, tx, stageID, status, score)
	return args.Error(0)
}

func (m *MockJourneyRepository) UnlockNextStage(ctx context.Context, tx *gorm.DB, stage *models.Stage) error {
	args := m.Called(ctx, tx, stage)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SessionRecord, error) {
	args := m.Called(ctx, tx, id)
	record, _ := args.Get(0).(*models.SessionRecord)
	return record, args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockSessionRepository) SaveProgress(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) (bool, error) {
	args := m.Called(ctx, tx, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.SessionFilters) ([]models.SessionRecord, int64, error) {
	args := m.Called(ctx, tx, userID, filters)
	records, _ := args.Get(0).([]models.SessionRecord)
	return records, args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) ListOpen(ctx context.Context, tx *gorm.DB) ([]models.SessionRecord, error) {
	args := m.Called(ctx, tx)
	records, _ := args.Get(0).([]models.SessionRecord)
	return records, args.Error(1)
}

// mockRepository runs transactions inline with a nil tx.
type mockRepository struct {
	journeys *MockJourneyRepository
	sessions *MockSessionRepository
	txErr    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{journeys: &MockJourneyRepository{}, sessions: &MockSessionRepository{}}
}

func (r *mockRepository) Journey() repositories.JourneyRepository { return r.journeys }
func (r *mockRepository) Session() repositories.SessionRepository { return r.sessions }
func (r *mockRepository) DB() *gorm.DB                            { return nil }

func (r *mockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.txErr != nil {
		return r.txErr
	}
	return fn(nil)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// question builds a four-option question whose correct option is correct.
func question(t *testing.T, id uint, correct int) models.Question {
	t.Helper()
	opts := make([]answers.Option, 4)
	for i := range opts {
		opts[i] = answers.Option{Text: string(rune('a' + i)), IsCorrect: i == correct}
	}
	raw, err := json.Marshal(opts)
	require.NoError(t, err)
	return models.Question{ID: id, Order: int(id), Text: "question", Options: datatypes.JSON(raw)}
}

func uintPtr(v uint) *uint { return &v }
