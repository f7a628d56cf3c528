package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/events"
	"github.com/SAP-F-2025/toeic-session-service/internal/journey"
	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
)

type journeyService struct {
	repo      repositories.Repository
	registry  *journey.Registry
	publisher events.EventPublisher
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewJourneyService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) JourneyService {
	s := &journeyService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "toeic-session-service", Component: "journey"}),
	}
	s.registry = journey.NewRegistry(logger, s.watchStore)
	return s
}

// watchStore publishes position changes and load failures of a learner's store.
func (s *journeyService) watchStore(userID string, store *journey.Store) {
	store.Subscribe(func(state journey.State, action journey.Action) {
		data := events.JourneyProgressEvent{
			UserID:    userID,
			Action:    journey.Name(action),
			JourneyID: state.CurrentJourneyID,
			StageID:   state.CurrentStageID,
			LessonID:  state.CurrentLessonID,
		}
		switch a := action.(type) {
		case journey.SetCurrentJourney, journey.SetCurrentStage, journey.SetCurrentLesson, journey.ResetState:
		case journey.SetError:
			if a.Err != nil {
				data.Error = a.Err.Message
			}
		default:
			return
		}
		if err := s.publisher.Publish(context.Background(), events.NewJourneyProgressEvent(data)); err != nil {
			s.logger.Warn("Failed to publish journey progress", "user_id", userID, "error", err)
		}
	})
}

// ===== LOADS =====

func (s *journeyService) LoadJourney(ctx context.Context, userID string, journeyID uint) (journey.State, error) {
	op := s.opLogger.WithOperation(ctx, "load_journey", userID)
	store := s.registry.For(userID)
	store.Dispatch(journey.SetLoading{Loading: true})

	j, err := ownedJourney(ctx, s.repo.Journey(), userID, journeyID)
	op.LogResult(strconv.FormatUint(uint64(journeyID), 10), "journey", err)
	if err != nil {
		return s.fail(store, err)
	}

	return store.Dispatch(
		journey.SetJourneyData{Journey: j},
		journey.SetCurrentJourney{ID: &j.ID},
	), nil
}

func (s *journeyService) LoadStages(ctx context.Context, userID string, journeyID uint) (journey.State, error) {
	op := s.opLogger.WithOperation(ctx, "load_stages", userID)
	store := s.registry.For(userID)
	store.Dispatch(journey.SetLoading{Loading: true})

	stages, err := s.loadStages(ctx, userID, journeyID)
	op.LogResult(strconv.FormatUint(uint64(journeyID), 10), "journey", err)
	if err != nil {
		return s.fail(store, err)
	}
	return store.Dispatch(journey.SetStages{Stages: stages}), nil
}

func (s *journeyService) loadStages(ctx context.Context, userID string, journeyID uint) ([]models.Stage, error) {
	if _, err := ownedJourney(ctx, s.repo.Journey(), userID, journeyID); err != nil {
		return nil, err
	}
	stages, err := s.repo.Journey().ListStages(ctx, nil, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return stages, nil
}

func (s *journeyService) LoadLessons(ctx context.Context, userID string, stageID uint) (journey.State, error) {
	op := s.opLogger.WithOperation(ctx, "load_lessons", userID)
	store := s.registry.For(userID)
	store.Dispatch(journey.SetLoading{Loading: true})

	days, err := s.loadLessons(ctx, userID, stageID)
	op.LogResult(strconv.FormatUint(uint64(stageID), 10), "stage", err)
	if err != nil {
		return s.fail(store, err)
	}
	return store.Dispatch(journey.SetLessons{Lessons: days}), nil
}

func (s *journeyService) loadLessons(ctx context.Context, userID string, stageID uint) ([]models.Day, error) {
	if _, err := ownedStage(ctx, s.repo.Journey(), userID, stageID); err != nil {
		return nil, err
	}
	days, err := s.repo.Journey().ListDays(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return days, nil
}

func (s *journeyService) LoadTests(ctx context.Context, userID string, stageID uint) (journey.State, error) {
	op := s.opLogger.WithOperation(ctx, "load_tests", userID)
	store := s.registry.For(userID)
	store.Dispatch(journey.SetLoading{Loading: true})

	tests, err := s.loadTests(ctx, userID, stageID)
	op.LogResult(strconv.FormatUint(uint64(stageID), 10), "stage", err)
	if err != nil {
		return s.fail(store, err)
	}
	return store.Dispatch(journey.SetTests{Tests: tests}), nil
}

func (s *journeyService) loadTests(ctx context.Context, userID string, stageID uint) ([]models.FinalTest, error) {
	if _, err := ownedStage(ctx, s.repo.Journey(), userID, stageID); err != nil {
		return nil, err
	}
	tests, err := s.repo.Journey().ListFinalTests(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list final tests: %w", err)
	}
	return tests, nil
}

// ===== SELECTION =====

func (s *journeyService) SelectStage(ctx context.Context, userID string, stageID uint) (journey.State, error) {
	store := s.registry.For(userID)
	stage, err := ownedStage(ctx, s.repo.Journey(), userID, stageID)
	if err != nil {
		return s.fail(store, err)
	}
	if stage.Status == models.ProgressLocked {
		return store.State(), NewBusinessRuleError("stage_locked", "stage is locked", map[string]interface{}{"stage_id": stageID})
	}
	return store.Dispatch(
		journey.SetCurrentJourney{ID: &stage.JourneyID},
		journey.SetCurrentStage{ID: &stage.ID},
		journey.SetCurrentLesson{ID: nil},
	), nil
}

func (s *journeyService) SelectLesson(ctx context.Context, userID string, lessonID uint) (journey.State, error) {
	store := s.registry.For(userID)
	day, stage, err := ownedDay(ctx, s.repo.Journey(), userID, lessonID)
	if err != nil {
		return s.fail(store, err)
	}
	if stage.Status == models.ProgressLocked {
		return store.State(), NewBusinessRuleError("stage_locked", "stage is locked", map[string]interface{}{"stage_id": stage.ID})
	}
	return store.Dispatch(
		journey.SetCurrentJourney{ID: &stage.JourneyID},
		journey.SetCurrentStage{ID: &stage.ID},
		journey.SetCurrentLesson{ID: &day.ID},
	), nil
}

func (s *journeyService) State(userID string) journey.State {
	return s.registry.For(userID).State()
}

func (s *journeyService) Reset(userID string) journey.State {
	return s.registry.For(userID).Dispatch(journey.ResetState{})
}

// ===== PROGRESS =====

func (s *journeyService) RecordResult(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	if record.Status == models.SessionCancelled {
		return nil
	}
	repo := s.repo.Journey()

	switch submit.Mode(record.Mode) {
	case submit.ModeLesson:
		if record.DayID == nil {
			return nil
		}
		return repo.UpdateDayStatus(ctx, tx, *record.DayID, models.ProgressCompleted)

	case submit.ModeFinalTest:
		if record.FinalTestID == nil || record.Score == nil {
			return nil
		}
		test, err := repo.GetFinalTest(ctx, tx, *record.FinalTestID)
		if err != nil {
			return fmt.Errorf("failed to get final test: %w", err)
		}
		stage, err := repo.GetStage(ctx, tx, test.StageID)
		if err != nil {
			return fmt.Errorf("failed to get stage: %w", err)
		}

		if *record.Score < float64(test.PassingScore) {
			return repo.UpdateStageProgress(ctx, tx, stage.ID, models.ProgressInProgress, record.Score)
		}
		if err := repo.UpdateStageProgress(ctx, tx, stage.ID, models.ProgressCompleted, record.Score); err != nil {
			return err
		}
		return repo.UnlockNextStage(ctx, tx, stage)
	}
	return nil
}

// ===== HELPERS =====

func (s *journeyService) fail(store *journey.Store, err error) (journey.State, error) {
	return store.Dispatch(journey.SetError{Err: classify(err)}), err
}

// classify maps a load failure onto the error kinds the journey store exposes.
func classify(err error) *journey.Error {
	kind := journey.ErrorNetwork
	switch {
	case IsNotFound(err), IsUnauthorized(err):
		kind = journey.ErrorNotFound
	case IsValidation(err), IsBusinessRule(err):
		kind = journey.ErrorValidation
	}
	return &journey.Error{Kind: kind, Message: err.Error()}
}

func ownedJourney(ctx context.Context, repo repositories.JourneyRepository, userID string, journeyID uint) (*models.Journey, error) {
	j, err := repo.GetJourney(ctx, nil, journeyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrJourneyNotFound
		}
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	if j.UserID != userID {
		return nil, ErrJourneyNotOwned
	}
	return j, nil
}

func ownedStage(ctx context.Context, repo repositories.JourneyRepository, userID string, stageID uint) (*models.Stage, error) {
	stage, err := repo.GetStage(ctx, nil, stageID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if _, err := ownedJourney(ctx, repo, userID, stage.JourneyID); err != nil {
		if errors.Is(err, ErrJourneyNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

func ownedDay(ctx context.Context, repo repositories.JourneyRepository, userID string, dayID uint) (*models.Day, *models.Stage, error) {
	day, err := repo.GetDay(ctx, nil, dayID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	stage, err := ownedStage(ctx, repo, userID, day.StageID)
	if err != nil {
		if errors.Is(err, ErrStageNotFound) {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, err
	}
	return day, stage, nil
}

func ownedFinalTest(ctx context.Context, repo repositories.JourneyRepository, userID string, testID uint) (*models.FinalTest, *models.Stage, error) {
	test, err := repo.GetFinalTest(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrFinalTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get final test: %w", err)
	}
	stage, err := ownedStage(ctx, repo, userID, test.StageID)
	if err != nil {
		if errors.Is(err, ErrStageNotFound) {
			return nil, nil, ErrFinalTestNotFound
		}
		return nil, nil, err
	}
	return test, stage, nil
}
