package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	"github.com/SAP-F-2025/toeic-session-service/internal/cache"
	"github.com/SAP-F-2025/toeic-session-service/internal/events"
	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
	"github.com/SAP-F-2025/toeic-session-service/internal/validator"
)

// SessionSettings tune how sessions are timed and persisted.
type SessionSettings struct {
	Warnings            []time.Duration
	Tick                time.Duration
	RequireConfirmation bool
	FinalizeTimeout     time.Duration
	// CheckpointInterval is how often a running session is written to the cache
	// and its timer and answers to the database.
	CheckpointInterval time.Duration
}

// liveSession is a session running on this instance. userID is fixed at
// creation; record is the last state written to the database and is guarded
// by mu, which is also held across every write of it.
type liveSession struct {
	session *session.Session
	userID  string
	cancel  context.CancelFunc

	mu     sync.Mutex
	record models.SessionRecord
}

func newLiveSession(record *models.SessionRecord) *liveSession {
	return &liveSession{userID: record.UserID, record: *record}
}

type sessionService struct {
	repo        repositories.Repository
	journeys    JourneyService
	checkpoints *cache.SessionCache[session.Checkpoint]
	publisher   events.EventPublisher
	validator   *validator.Validator
	settings    SessionSettings
	logger      *slog.Logger
	opLogger    *ServiceLogger

	mu   sync.Mutex
	live map[string]*liveSession
	wg   sync.WaitGroup
}

func NewSessionService(
	repo repositories.Repository,
	journeys JourneyService,
	checkpoints *cache.SessionCache[session.Checkpoint],
	publisher events.EventPublisher,
	validator *validator.Validator,
	settings SessionSettings,
	logger *slog.Logger,
) SessionService {
	if settings.FinalizeTimeout <= 0 {
		settings.FinalizeTimeout = 10 * time.Second
	}
	if settings.CheckpointInterval <= 0 {
		settings.CheckpointInterval = 15 * time.Second
	}
	return &sessionService{
		repo:        repo,
		journeys:    journeys,
		checkpoints: checkpoints,
		publisher:   publisher,
		validator:   validator,
		settings:    settings,
		logger:      logger,
		opLogger:    NewServiceLogger(logger, LogConfig{Service: "toeic-session-service", Component: "session"}),
		live:        make(map[string]*liveSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, userID string, req *StartSessionRequest) (*session.Snapshot, error) {
	s.logger.Info("Starting session", "user_id", userID, "mode", req.Mode)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	record := &models.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mode:      req.Mode,
		Status:    models.SessionActive,
		StartedAt: time.Now().UTC(),
	}

	switch submit.Mode(req.Mode) {
	case submit.ModeLesson:
		if req.LessonID == nil {
			return nil, NewValidationErrorWithRule("lesson_id", "is required for lesson sessions", "required_for_mode", req.Mode)
		}
		record.DayID = req.LessonID
	case submit.ModeFinalTest:
		if req.FinalTestID == nil {
			return nil, NewValidationErrorWithRule("final_test_id", "is required for final test sessions", "required_for_mode", req.Mode)
		}
		record.FinalTestID = req.FinalTestID
	}

	cfg, err := s.sessionConfig(ctx, record)
	if err != nil {
		return nil, err
	}

	ls := newLiveSession(record)
	sess, err := session.New(cfg, s.hooks(ls))
	if err != nil {
		return nil, err
	}
	ls.session = sess
	if err := sess.Start(); err != nil {
		return nil, err
	}

	cp := sess.Checkpoint()
	if err := record.SetAnswers(cp.Answers); err != nil {
		return nil, err
	}
	if cp.Timer != nil {
		if err := record.SetTimer(*cp.Timer); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Session().Create(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	ls.record = *record

	s.mu.Lock()
	s.track(ls)
	s.mu.Unlock()
	s.saveCheckpoint(ctx, sess)

	s.publish(ctx, events.NewSessionStartedEvent(events.SessionStartedEvent{
		SessionID:   record.ID,
		UserID:      userID,
		Mode:        record.Mode,
		DayID:       record.DayID,
		FinalTestID: record.FinalTestID,
		Questions:   len(cfg.Questions),
		DurationMs:  cfg.Duration.Milliseconds(),
		StartedAt:   record.StartedAt,
	}))

	s.logger.Info("Session started", "session_id", record.ID, "user_id", userID, "questions", len(cfg.Questions))
	snap := sess.Snapshot()
	return &snap, nil
}

// sessionConfig loads the questions and timing for record after checking ownership.
func (s *sessionService) sessionConfig(ctx context.Context, record *models.SessionRecord) (session.Config, error) {
	repo := s.repo.Journey()
	cfg := session.Config{
		ID:     record.ID,
		UserID: record.UserID,
		Mode:   submit.Mode(record.Mode),
		Tick:   s.settings.Tick,
	}

	var questions []models.Question
	switch {
	case record.DayID != nil:
		day, _, err := ownedDay(ctx, repo, record.UserID, *record.DayID)
		if err != nil {
			return cfg, err
		}
		questions, err = repo.GetDayQuestions(ctx, nil, day.ID)
		if err != nil {
			return cfg, fmt.Errorf("failed to get lesson questions: %w", err)
		}
		cfg.Duration = time.Duration(day.TimeLimit) * time.Second
	case record.FinalTestID != nil:
		test, _, err := ownedFinalTest(ctx, repo, record.UserID, *record.FinalTestID)
		if err != nil {
			return cfg, err
		}
		questions, err = repo.GetFinalTestQuestions(ctx, nil, test.ID)
		if err != nil {
			return cfg, fmt.Errorf("failed to get final test questions: %w", err)
		}
		cfg.Duration = time.Duration(test.Duration) * time.Minute
		cfg.RequireConfirmation = s.settings.RequireConfirmation
	default:
		return cfg, ErrNoQuestions
	}

	if len(questions) == 0 {
		return cfg, ErrNoQuestions
	}
	converted, err := models.ToAnswersList(questions)
	if err != nil {
		return cfg, err
	}
	cfg.Questions = converted
	cfg.Warnings = warningsWithin(s.settings.Warnings, cfg.Duration)
	return cfg, nil
}

// warningsWithin drops thresholds that would fire on the first tick.
func warningsWithin(all []time.Duration, duration time.Duration) []time.Duration {
	if duration <= 0 {
		return nil
	}
	var out []time.Duration
	for _, w := range all {
		if w > 0 && w < duration {
			out = append(out, w)
		}
	}
	return out
}

// track registers ls and starts its timer goroutine. Caller holds s.mu.
func (s *sessionService) track(ls *liveSession) *liveSession {
	ctx, cancel := context.WithCancel(context.Background())
	ls.cancel = cancel
	sess := ls.session
	s.live[sess.ID()] = ls

	if sess.Timed() {
		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			sess.Run(ctx)
		}()
		go func() {
			defer s.wg.Done()
			s.checkpointLoop(ctx, ls)
		}()
	}
	return ls
}

// evict drops a finalized session from memory and stops its goroutines.
func (s *sessionService) evict(ls *liveSession) {
	s.mu.Lock()
	if s.live[ls.session.ID()] == ls {
		delete(s.live, ls.session.ID())
	}
	s.mu.Unlock()
	if ls.cancel != nil {
		ls.cancel()
	}
}

// checkpointLoop caches the running session and writes its progress to the
// database. It also retries a timed-out submission that failed.
func (s *sessionService) checkpointLoop(ctx context.Context, ls *liveSession) {
	sess := ls.session
	ticker := time.NewTicker(s.settings.CheckpointInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.Done():
			return
		case <-ticker.C:
			if sess.TimeUp() {
				s.expire(ctx, ls)
				continue
			}
			s.saveCheckpoint(ctx, sess)
			s.saveProgress(ctx, ls)
		}
	}
}

// expire finalizes a session whose time ran out before its result was stored.
func (s *sessionService) expire(ctx context.Context, ls *liveSession) {
	if !ls.session.TimeUp() {
		return
	}
	if err := ls.session.Expire(ctx); err != nil {
		s.logger.Warn("Failed to finalize timed-out session", "session_id", ls.session.ID(), "error", err)
	}
}

// saveProgress writes the timer and answers of an open session to its record,
// so a restart without the cache does not hand back spent time.
func (s *sessionService) saveProgress(ctx context.Context, ls *liveSession) {
	cp := ls.session.Checkpoint()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.record.Status.Finished() {
		return
	}
	record := ls.record
	if err := record.SetAnswers(cp.Answers); err != nil {
		s.logger.Warn("Failed to encode session answers", "session_id", record.ID, "error", err)
		return
	}
	if cp.Timer != nil {
		if err := record.SetTimer(*cp.Timer); err != nil {
			s.logger.Warn("Failed to encode session timer", "session_id", record.ID, "error", err)
			return
		}
	}
	saved, err := s.repo.Session().SaveProgress(ctx, nil, &record)
	if err != nil {
		s.logger.Warn("Failed to save session progress", "session_id", record.ID, "error", err)
		return
	}
	if saved {
		ls.record = record
	}
}

func (s *sessionService) hooks(ls *liveSession) session.Hooks {
	return session.Hooks{
		OnWarning: func(sess *session.Session, threshold, remaining time.Duration) {
			s.logger.Info("Session time warning", "session_id", sess.ID(), "remaining", remaining)
			s.publish(context.Background(), events.NewSessionTimeWarningEvent(sess.ID(), sess.UserID(), threshold, remaining))
		},
		OnTimeUp: func(sess *session.Session) {
			s.logger.Info("Session time is up", "session_id", sess.ID())
			s.publish(context.Background(), events.NewSessionTimeUpEvent(sess.ID(), sess.UserID()))
		},
		OnFinalize: func(ctx context.Context, sess *session.Session, result session.Result) error {
			return s.persistResult(ctx, ls, result)
		},
	}
}

// persistResult stores the graded session and journey progress in one
// transaction, then evicts the session from memory.
func (s *sessionService) persistResult(ctx context.Context, ls *liveSession, result session.Result) error {
	ctx, cancel := context.WithTimeout(ctx, s.settings.FinalizeTimeout)
	defer cancel()

	record, err := s.commitResult(ctx, ls, result)
	if err != nil {
		s.logger.Error("Failed to persist session result", "session_id", ls.session.ID(), "error", err)
		return err
	}
	s.evict(ls)

	if err := s.checkpoints.Delete(ctx, record.ID); err != nil {
		s.logger.Warn("Failed to drop session checkpoint", "session_id", record.ID, "error", err)
	}

	s.publish(ctx, events.NewSessionSubmittedEvent(events.SessionSubmittedEvent{
		SessionID:   record.ID,
		UserID:      record.UserID,
		Mode:        record.Mode,
		Reason:      string(result.Reason),
		Total:       result.Summary.Total,
		Correct:     result.Summary.Correct,
		Unanswered:  result.Summary.Unanswered,
		Score:       result.Summary.Score,
		SubmittedAt: result.FinishedAt,
	}))
	return nil
}

func (s *sessionService) commitResult(ctx context.Context, ls *liveSession, result session.Result) (models.SessionRecord, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	updated := ls.record
	updated.Status = models.SessionSubmitted
	if result.Reason == session.ReasonTimeout {
		updated.Status = models.SessionTimedOut
	}
	finishedAt := result.FinishedAt
	updated.SubmittedAt = &finishedAt
	updated.ApplySummary(result.Summary)
	if err := updated.SetAnswers(result.Answers); err != nil {
		return updated, err
	}
	if result.Timer != nil {
		if err := updated.SetTimer(*result.Timer); err != nil {
			return updated, err
		}
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Session().Update(ctx, tx, &updated); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return s.journeys.RecordResult(ctx, tx, &updated)
	})
	if err != nil {
		return updated, err
	}
	ls.record = updated
	return updated, nil
}

// ===== LOOKUP =====

// acquire returns the live session for id, restoring it from the cache or the
// database when this instance has not seen it yet. A session whose time ran
// out is finalized before it is handed back.
func (s *sessionService) acquire(ctx context.Context, userID, sessionID string) (*liveSession, error) {
	ls, err := s.lookup(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.expire(ctx, ls)
	return ls, nil
}

func (s *sessionService) lookup(ctx context.Context, userID, sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.live[sessionID]; ok {
		if ls.userID != userID {
			return nil, ErrSessionAccessDenied
		}
		return ls, nil
	}

	record, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	if record.Status.Finished() {
		return nil, ErrSessionFinished
	}
	return s.restore(ctx, record)
}

// restore rebuilds an open session. Caller holds s.mu.
func (s *sessionService) restore(ctx context.Context, record *models.SessionRecord) (*liveSession, error) {
	cfg, err := s.sessionConfig(ctx, record)
	if err != nil {
		return nil, err
	}

	cp, err := s.checkpoints.Load(ctx, record.ID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Failed to load session checkpoint, using stored state", "session_id", record.ID, "error", err)
		}
		cp, err = checkpointFromRecord(record)
		if err != nil {
			return nil, err
		}
	}

	ls := newLiveSession(record)
	sess, err := session.Restore(cfg, s.hooks(ls), cp)
	if err != nil {
		return nil, err
	}
	ls.session = sess
	s.logger.Info("Session restored", "session_id", record.ID, "index", cp.Index)
	return s.track(ls), nil
}

func checkpointFromRecord(record *models.SessionRecord) (session.Checkpoint, error) {
	all, err := record.AnswerMap()
	if err != nil {
		return session.Checkpoint{}, err
	}
	cp := session.Checkpoint{Started: true, Answers: all}
	if len(record.Timer) > 0 {
		st, err := record.TimerState()
		if err != nil {
			return session.Checkpoint{}, err
		}
		cp.Timer = &st
	}
	return cp, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*session.Snapshot, error) {
	ls, err := s.acquire(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	snap := ls.session.Snapshot()
	return &snap, nil
}

// ===== ACTIONS =====

// apply runs fn against the live session, checkpoints it and returns the new snapshot.
func (s *sessionService) apply(ctx context.Context, operation, userID, sessionID string, fn func(*session.Session) error) (*session.Snapshot, error) {
	return s.applyTo(ctx, operation, userID, sessionID, s.acquire, fn)
}

// press is apply for the submit button, which finalizes a timed-out session
// itself.
func (s *sessionService) press(ctx context.Context, operation, userID, sessionID string, fn func(*session.Session) error) (*session.Snapshot, error) {
	return s.applyTo(ctx, operation, userID, sessionID, s.lookup, fn)
}

type lookupFunc func(ctx context.Context, userID, sessionID string) (*liveSession, error)

func (s *sessionService) applyTo(ctx context.Context, operation, userID, sessionID string, find lookupFunc, fn func(*session.Session) error) (*session.Snapshot, error) {
	op := s.opLogger.WithOperation(ctx, operation, userID)
	ls, err := find(ctx, userID, sessionID)
	if err == nil {
		err = fn(ls.session)
	}
	op.LogResult(sessionID, "session", err)
	if err != nil {
		return nil, err
	}

	if !ls.session.Finished() {
		s.saveCheckpoint(ctx, ls.session)
	}
	snap := ls.session.Snapshot()
	return &snap, nil
}

func (s *sessionService) Goto(ctx context.Context, userID, sessionID string, req *GotoRequest) (*session.Snapshot, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.apply(ctx, "goto", userID, sessionID, func(sess *session.Session) error {
		return sess.Goto(*req.Index)
	})
}

func (s *sessionService) Answer(ctx context.Context, userID, sessionID string, req *AnswerRequest) (*session.Snapshot, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	key, err := answers.ParseKey(req.Key)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, "answer", userID, sessionID, func(sess *session.Session) error {
		return sess.Answer(key, answers.Letter(req.Letter))
	})
}

func (s *sessionService) Pause(ctx context.Context, userID, sessionID string) (*session.Snapshot, error) {
	return s.apply(ctx, "pause", userID, sessionID, (*session.Session).Pause)
}

func (s *sessionService) Resume(ctx context.Context, userID, sessionID string) (*session.Snapshot, error) {
	return s.apply(ctx, "resume", userID, sessionID, (*session.Session).Resume)
}

func (s *sessionService) AddTime(ctx context.Context, userID, sessionID string, req *AddTimeRequest) (*session.Snapshot, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.apply(ctx, "add_time", userID, sessionID, func(sess *session.Session) error {
		return sess.AddTime(time.Duration(req.Seconds) * time.Second)
	})
}

func (s *sessionService) Submit(ctx context.Context, userID, sessionID string) (*SubmitResponse, error) {
	var outcome submit.Outcome
	snap, err := s.press(ctx, "submit", userID, sessionID, func(sess *session.Session) error {
		var err error
		outcome, err = sess.Press(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SubmitResponse{Outcome: outcome, Session: snap}, nil
}

func (s *sessionService) Confirm(ctx context.Context, userID, sessionID string) (*SubmitResponse, error) {
	var outcome submit.Outcome
	snap, err := s.press(ctx, "confirm", userID, sessionID, func(sess *session.Session) error {
		var err error
		outcome, err = sess.Confirm(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SubmitResponse{Outcome: outcome, Session: snap}, nil
}

func (s *sessionService) Cancel(ctx context.Context, userID, sessionID string) (*session.Snapshot, error) {
	return s.apply(ctx, "cancel", userID, sessionID, (*session.Session).Cancel)
}

// Exit leaves the session. An unfinished session is stored as cancelled.
func (s *sessionService) Exit(ctx context.Context, userID, sessionID string) error {
	op := s.opLogger.WithOperation(ctx, "exit", userID)
	ls, err := s.acquire(ctx, userID, sessionID)
	if errors.Is(err, ErrSessionFinished) {
		op.LogResult(sessionID, "session", nil)
		return nil
	}
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return err
	}

	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()
	ls.cancel()

	if !ls.session.Finished() {
		err = s.storeCancelled(ctx, ls)
	}
	op.LogResult(sessionID, "session", err)
	return err
}

func (s *sessionService) storeCancelled(ctx context.Context, ls *liveSession) error {
	cp := ls.session.Checkpoint()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.record.Status.Finished() {
		return nil
	}
	record := ls.record
	record.Status = models.SessionCancelled
	if err := record.SetAnswers(cp.Answers); err != nil {
		return err
	}
	if cp.Timer != nil {
		if err := record.SetTimer(*cp.Timer); err != nil {
			return err
		}
	}
	if err := s.repo.Session().Update(ctx, nil, &record); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	ls.record = record
	if err := s.checkpoints.Delete(ctx, record.ID); err != nil {
		s.logger.Warn("Failed to drop session checkpoint", "session_id", record.ID, "error", err)
	}
	return nil
}

// ===== RESULTS =====

func (s *sessionService) Result(ctx context.Context, userID, sessionID string) (*session.Result, error) {
	s.mu.Lock()
	ls, ok := s.live[sessionID]
	s.mu.Unlock()
	if ok {
		if ls.userID != userID {
			return nil, ErrSessionAccessDenied
		}
		res, err := ls.session.Result()
		if errors.Is(err, session.ErrNotFinalized) {
			return nil, ErrSessionNotFinished
		}
		if err != nil {
			return nil, err
		}
		return &res, nil
	}

	record, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if record.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	if record.Status != models.SessionSubmitted && record.Status != models.SessionTimedOut {
		return nil, ErrSessionNotFinished
	}
	return s.regrade(ctx, record)
}

// regrade rebuilds the graded result of a stored session.
func (s *sessionService) regrade(ctx context.Context, record *models.SessionRecord) (*session.Result, error) {
	cfg, err := s.sessionConfig(ctx, record)
	if err != nil {
		return nil, err
	}
	all, err := record.AnswerMap()
	if err != nil {
		return nil, err
	}

	graded, summary := answers.Grade(cfg.Questions, all)
	result := &session.Result{
		SessionID: record.ID,
		UserID:    record.UserID,
		Mode:      submit.Mode(record.Mode),
		Reason:    session.ReasonSubmitted,
		Answers:   all,
		Graded:    graded,
		Summary:   summary,
	}
	if record.Status == models.SessionTimedOut {
		result.Reason = session.ReasonTimeout
	}
	if record.SubmittedAt != nil {
		result.FinishedAt = *record.SubmittedAt
	}
	if len(record.Timer) > 0 {
		st, err := record.TimerState()
		if err == nil {
			result.Timer = &st
		}
	}
	return result, nil
}

func (s *sessionService) History(ctx context.Context, userID string, filters repositories.SessionFilters) ([]models.SessionRecord, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	records, total, err := s.repo.Session().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return records, total, nil
}

// ===== PROCESS =====

func (s *sessionService) Recover(ctx context.Context) (int, error) {
	records, err := s.repo.Session().ListOpen(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list open sessions: %w", err)
	}

	var restored []*liveSession
	s.mu.Lock()
	for i := range records {
		record := records[i]
		if _, ok := s.live[record.ID]; ok {
			continue
		}
		ls, err := s.restore(ctx, &record)
		if err != nil {
			s.logger.Warn("Failed to restore session", "session_id", record.ID, "error", err)
			continue
		}
		restored = append(restored, ls)
	}
	s.mu.Unlock()

	// Sessions that ran out of time while the service was down close now.
	for _, ls := range restored {
		s.expire(ctx, ls)
	}
	return len(restored), nil
}

// Shutdown saves every open session, stops the timer goroutines and waits
// for them to exit.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	open := make([]*liveSession, 0, len(s.live))
	for _, ls := range s.live {
		open = append(open, ls)
	}
	s.mu.Unlock()

	ctx := context.Background()
	for _, ls := range open {
		ls.cancel()
		if !ls.session.Finished() {
			s.saveCheckpoint(ctx, ls.session)
			s.saveProgress(ctx, ls)
		}
	}
	s.wg.Wait()
}

func (s *sessionService) saveCheckpoint(ctx context.Context, sess *session.Session) {
	if err := s.checkpoints.Save(ctx, sess.ID(), sess.Checkpoint()); err != nil {
		s.logger.Warn("Failed to save session checkpoint", "session_id", sess.ID(), "error", err)
	}
}

func (s *sessionService) publish(ctx context.Context, event *events.SessionEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish session event", "event_type", event.Type, "error", err)
	}
}
