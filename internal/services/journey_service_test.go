package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/events"
	"github.com/SAP-F-2025/toeic-session-service/internal/journey"
	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
)

func setupJourneyService() (*mockRepository, *events.MockEventPublisher, JourneyService) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	return repo, publisher, NewJourneyService(repo, publisher, testLogger())
}

// ownJourney registers journey 3 owned by u1 with stage 2 in the given status.
func ownJourney(repo *mockRepository, stageStatus models.ProgressStatus) {
	repo.journeys.On("GetJourney", mock.Anything, mock.Anything, uint(3)).
		Return(&models.Journey{ID: 3, UserID: "u1", Title: "Road to 750"}, nil)
	repo.journeys.On("GetStage", mock.Anything, mock.Anything, uint(2)).
		Return(&models.Stage{ID: 2, JourneyID: 3, Order: 1, Status: stageStatus}, nil)
}

func TestJourneyService_LoadJourney(t *testing.T) {
	repo, publisher, svc := setupJourneyService()
	ownJourney(repo, models.ProgressInProgress)

	state, err := svc.LoadJourney(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Error)
	require.NotNil(t, state.JourneyData)
	assert.Equal(t, "Road to 750", state.JourneyData.Title)
	require.NotNil(t, state.CurrentJourneyID)
	assert.Equal(t, uint(3), *state.CurrentJourneyID)

	progress := publisher.OfType(events.EventJourneyProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, "u1", progress[0].Data.(events.JourneyProgressEvent).UserID)
}

func TestJourneyService_LoadJourneyOwnedByAnotherLearner(t *testing.T) {
	repo, publisher, svc := setupJourneyService()
	ownJourney(repo, models.ProgressInProgress)

	state, err := svc.LoadJourney(context.Background(), "u2", 3)
	assert.ErrorIs(t, err, ErrJourneyNotOwned)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.Error)
	assert.Equal(t, journey.ErrorNotFound, state.Error.Kind)
	assert.Nil(t, state.JourneyData)

	progress := publisher.OfType(events.EventJourneyProgress)
	require.Len(t, progress, 1)
	assert.NotEmpty(t, progress[0].Data.(events.JourneyProgressEvent).Error)
}

func TestJourneyService_LoadStagesRepositoryFailure(t *testing.T) {
	repo, _, svc := setupJourneyService()
	ownJourney(repo, models.ProgressInProgress)
	repo.journeys.On("ListStages", mock.Anything, mock.Anything, uint(3)).Return(nil, errors.New("connection reset"))

	state, err := svc.LoadStages(context.Background(), "u1", 3)
	assert.Error(t, err)
	require.NotNil(t, state.Error)
	assert.Equal(t, journey.ErrorNetwork, state.Error.Kind)

	// A later successful load clears the error.
	repo.journeys.ExpectedCalls = nil
	ownJourney(repo, models.ProgressInProgress)
	repo.journeys.On("ListStages", mock.Anything, mock.Anything, uint(3)).
		Return([]models.Stage{{ID: 2, JourneyID: 3}}, nil)

	state, err = svc.LoadStages(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.Nil(t, state.Error)
	assert.Len(t, state.Stages, 1)
}

func TestJourneyService_LoadLessonsAndTests(t *testing.T) {
	repo, _, svc := setupJourneyService()
	ownJourney(repo, models.ProgressInProgress)
	repo.journeys.On("ListDays", mock.Anything, mock.Anything, uint(2)).
		Return([]models.Day{{ID: 1, StageID: 2}, {ID: 4, StageID: 2}}, nil)
	repo.journeys.On("ListFinalTests", mock.Anything, mock.Anything, uint(2)).
		Return([]models.FinalTest{{ID: 7, StageID: 2}}, nil)

	_, err := svc.LoadLessons(context.Background(), "u1", 2)
	require.NoError(t, err)
	state, err := svc.LoadTests(context.Background(), "u1", 2)
	require.NoError(t, err)

	assert.Len(t, state.Lessons, 2)
	assert.Len(t, state.Tests, 1)
	assert.Equal(t, state, svc.State("u1"))
}

func TestJourneyService_SelectLockedStage(t *testing.T) {
	repo, _, svc := setupJourneyService()
	ownJourney(repo, models.ProgressLocked)

	state, err := svc.SelectStage(context.Background(), "u1", 2)
	var rule *BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "stage_locked", rule.Rule)
	assert.Nil(t, state.CurrentStageID)
}

func TestJourneyService_SelectLessonAndReset(t *testing.T) {
	repo, publisher, svc := setupJourneyService()
	ownJourney(repo, models.ProgressInProgress)
	repo.journeys.On("GetDay", mock.Anything, mock.Anything, uint(1)).
		Return(&models.Day{ID: 1, StageID: 2}, nil)

	state, err := svc.SelectLesson(context.Background(), "u1", 1)
	require.NoError(t, err)
	require.NotNil(t, state.CurrentLessonID)
	assert.Equal(t, uint(1), *state.CurrentLessonID)
	assert.Equal(t, uint(2), *state.CurrentStageID)
	assert.Equal(t, uint(3), *state.CurrentJourneyID)

	state = svc.Reset("u1")
	assert.Equal(t, journey.InitialState(), state)

	// journey, stage and lesson selection plus the reset
	assert.Len(t, publisher.OfType(events.EventJourneyProgress), 4)
}

func TestJourneyService_RecordResult(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	finalTest := func(score *float64) *models.SessionRecord {
		return &models.SessionRecord{Mode: string(submit.ModeFinalTest), FinalTestID: uintPtr(7), Status: models.SessionSubmitted, Score: score}
	}

	t.Run("passed final test completes and unlocks", func(t *testing.T) {
		repo, _, svc := setupJourneyService()
		stage := &models.Stage{ID: 2, JourneyID: 3}
		repo.journeys.On("GetFinalTest", mock.Anything, mock.Anything, uint(7)).Return(&models.FinalTest{ID: 7, StageID: 2, PassingScore: 60}, nil)
		repo.journeys.On("GetStage", mock.Anything, mock.Anything, uint(2)).Return(stage, nil)
		repo.journeys.On("UpdateStageProgress", mock.Anything, mock.Anything, uint(2), models.ProgressCompleted, mock.Anything).Return(nil)
		repo.journeys.On("UnlockNextStage", mock.Anything, mock.Anything, stage).Return(nil)

		require.NoError(t, svc.RecordResult(context.Background(), nil, finalTest(score(75))))
		repo.journeys.AssertExpectations(t)
	})

	t.Run("failed final test stays in progress", func(t *testing.T) {
		repo, _, svc := setupJourneyService()
		repo.journeys.On("GetFinalTest", mock.Anything, mock.Anything, uint(7)).Return(&models.FinalTest{ID: 7, StageID: 2, PassingScore: 60}, nil)
		repo.journeys.On("GetStage", mock.Anything, mock.Anything, uint(2)).Return(&models.Stage{ID: 2}, nil)
		repo.journeys.On("UpdateStageProgress", mock.Anything, mock.Anything, uint(2), models.ProgressInProgress, mock.Anything).Return(nil)

		require.NoError(t, svc.RecordResult(context.Background(), nil, finalTest(score(40))))
		repo.journeys.AssertNotCalled(t, "UnlockNextStage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lesson completes the day", func(t *testing.T) {
		repo, _, svc := setupJourneyService()
		repo.journeys.On("UpdateDayStatus", mock.Anything, mock.Anything, uint(1), models.ProgressCompleted).Return(nil)

		record := &models.SessionRecord{Mode: string(submit.ModeLesson), DayID: uintPtr(1), Status: models.SessionSubmitted}
		require.NoError(t, svc.RecordResult(context.Background(), (*gorm.DB)(nil), record))
		repo.journeys.AssertExpectations(t)
	})

	t.Run("cancelled sessions are ignored", func(t *testing.T) {
		repo, _, svc := setupJourneyService()
		record := &models.SessionRecord{Mode: string(submit.ModeLesson), DayID: uintPtr(1), Status: models.SessionCancelled}
		require.NoError(t, svc.RecordResult(context.Background(), nil, record))
		assert.Empty(t, repo.journeys.Calls)
	})
}
