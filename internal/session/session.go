package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
	"github.com/SAP-F-2025/toeic-session-service/internal/timer"
)

var (
	ErrNoQuestions   = errors.New("session has no questions")
	ErrOutOfRange    = errors.New("question index out of range")
	ErrFinished      = errors.New("session already finished")
	ErrNotStarted    = errors.New("session not started")
	ErrUntimed       = errors.New("session has no timer")
	ErrNotFinalized  = errors.New("session has no result yet")
	ErrBadCheckpoint = errors.New("invalid session checkpoint")
	ErrTimeUp        = errors.New("session time is up")
)

type EndReason string

const (
	ReasonSubmitted EndReason = "submitted"
	ReasonTimeout   EndReason = "timeout"
)

// Config describes one run over an ordered list of questions.
type Config struct {
	ID        string
	UserID    string
	Mode      submit.Mode
	Questions []answers.Question

	// Duration of zero makes the session untimed.
	Duration            time.Duration
	Warnings            []time.Duration
	Tick                time.Duration
	RequireConfirmation bool
}

// Result is the graded outcome of a finalized session.
type Result struct {
	SessionID  string                 `json:"session_id"`
	UserID     string                 `json:"user_id"`
	Mode       submit.Mode            `json:"mode"`
	Reason     EndReason              `json:"reason"`
	Answers    answers.AnswerMap      `json:"answers"`
	Graded     []answers.GradedAnswer `json:"graded"`
	Summary    answers.Summary        `json:"summary"`
	Timer      *timer.State           `json:"timer,omitempty"`
	FinishedAt time.Time              `json:"finished_at"`
}

// Hooks connect a session to the outside world. All are optional and are never
// called with the session lock held.
type Hooks struct {
	OnWarning func(s *Session, threshold, remaining time.Duration)
	OnTimeUp  func(s *Session)
	// OnFinalize runs before the session is marked finished; an error keeps the
	// session open so the learner can submit again.
	OnFinalize func(ctx context.Context, s *Session, result Result) error
	OnAnswers  func(s *Session, all answers.AnswerMap)
}

// Session coordinates the timer, the answer accumulator and the submit
// controller for a single learner run.
type Session struct {
	cfg   Config
	hooks Hooks

	timer *timer.Timer
	acc   *answers.Accumulator
	ctrl  *submit.Controller

	mu            sync.Mutex
	started       bool
	index         int
	answers       answers.AnswerMap
	pendingReason EndReason
	result        *Result
	done          chan struct{}
}

func New(cfg Config, hooks Hooks) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		cfg:     cfg,
		hooks:   hooks,
		answers: make(answers.AnswerMap),
		done:    make(chan struct{}),
	}

	if cfg.Duration > 0 {
		t, err := timer.New(s.timerConfig())
		if err != nil {
			return nil, err
		}
		s.timer = t
	} else if cfg.Duration < 0 {
		return nil, timer.ErrNegativeDuration
	}

	ctrl, err := submit.NewController(submit.Inputs{
		Mode:                cfg.Mode,
		RequireConfirmation: cfg.RequireConfirmation,
		IsLastQuestion:      len(cfg.Questions) == 1,
	}, submit.Handlers{
		OnSubmit: s.finalize,
		OnNext:   s.next,
	})
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl

	s.acc = answers.NewAccumulator(s.mergeAnswers)
	s.acc.SetQuestion(cfg.Questions[0], s.answers)
	return s, nil
}

func (s *Session) timerConfig() timer.Config {
	return timer.Config{
		InitialDuration: s.cfg.Duration,
		Tick:            s.cfg.Tick,
		Warnings:        s.cfg.Warnings,
		OnTimeUp:        s.timeUp,
		OnWarning:       s.warn,
	}
}

func (s *Session) ID() string            { return s.cfg.ID }
func (s *Session) UserID() string        { return s.cfg.UserID }
func (s *Session) Mode() submit.Mode     { return s.cfg.Mode }
func (s *Session) Timed() bool           { return s.timer != nil }
func (s *Session) Done() <-chan struct{} { return s.done }

// Start activates the countdown. Calling it again is a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrFinished
	}
	if s.started {
		return nil
	}
	s.started = true
	if s.timer != nil {
		s.timer.Start()
	}
	return nil
}

// Run drives the countdown until ctx is done or the session is finalized.
// Untimed sessions return immediately.
func (s *Session) Run(ctx context.Context) {
	if s.timer == nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	s.timer.Run(ctx)
}

// Goto moves to the question at index. It is allowed after finalization for
// review but not between time-up and finalization.
func (s *Session) Goto(index int) error {
	if s.TimeUp() {
		return ErrTimeUp
	}
	return s.gotoIndex(index)
}

func (s *Session) gotoIndex(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.cfg.Questions) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	s.index = index
	prior := s.answers.Clone()
	s.mu.Unlock()

	s.acc.SetQuestion(s.cfg.Questions[index], prior)
	s.refreshController()
	return nil
}

func (s *Session) Answer(key answers.QuestionKey, letter answers.Letter) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	if s.TimeUp() {
		return ErrTimeUp
	}
	if err := s.acc.OnAnswer(key, letter); err != nil {
		return err
	}
	s.refreshController()
	return nil
}

func (s *Session) Pause() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if !s.ctrl.CanPause() {
		return ErrFinished
	}
	if s.timer != nil {
		s.timer.Pause()
	}
	return nil
}

func (s *Session) Resume() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if s.timer != nil {
		s.timer.Resume()
	}
	return nil
}

func (s *Session) AddTime(d time.Duration) error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if s.timer == nil {
		return ErrUntimed
	}
	if s.TimeUp() {
		return ErrTimeUp
	}
	return s.timer.AddTime(d)
}

// Press taps the submit button. Once time is up it retries the timed-out
// submission directly, skipping confirmation.
func (s *Session) Press(ctx context.Context) (submit.Outcome, error) {
	if err := s.requireStarted(); err != nil {
		return "", err
	}
	if s.TimeUp() {
		return s.ctrl.Finalize(ctx)
	}
	return s.ctrl.Press(ctx)
}

// Expire finalizes a session whose time is up but whose timed-out submission
// has not gone through yet. It is a no-op otherwise.
func (s *Session) Expire(ctx context.Context) error {
	if !s.TimeUp() {
		return nil
	}
	_, err := s.ctrl.Finalize(ctx)
	return err
}

func (s *Session) Confirm(ctx context.Context) (submit.Outcome, error) {
	if err := s.requireStarted(); err != nil {
		return "", err
	}
	if s.TimeUp() {
		return s.ctrl.Finalize(ctx)
	}
	return s.ctrl.Confirm(ctx)
}

// Cancel backs out of the confirmation prompt.
func (s *Session) Cancel() error {
	return s.ctrl.Cancel()
}

// Result returns the graded outcome once the session is finalized.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, ErrNotFinalized
	}
	return *s.result, nil
}

// TimeUp reports whether the countdown has run out on an unfinished session.
func (s *Session) TimeUp() bool {
	expired := s.timer != nil && s.timer.Expired()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result == nil && (expired || s.pendingReason == ReasonTimeout)
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

func (s *Session) requireStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Session) requireOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrFinished
	}
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Session) refreshController() {
	s.mu.Lock()
	isLast := s.index == len(s.cfg.Questions)-1
	s.mu.Unlock()
	s.ctrl.Update(isLast, s.acc.HasAnswered())
}

func (s *Session) mergeAnswers(current answers.AnswerMap) {
	s.mu.Lock()
	s.answers.Merge(current)
	all := s.answers.Clone()
	s.mu.Unlock()

	if s.hooks.OnAnswers != nil {
		s.hooks.OnAnswers(s, all)
	}
}

func (s *Session) next() error {
	s.mu.Lock()
	index := s.index + 1
	s.mu.Unlock()
	return s.gotoIndex(index)
}

func (s *Session) warn(threshold, remaining time.Duration) {
	if s.hooks.OnWarning != nil {
		s.hooks.OnWarning(s, threshold, remaining)
	}
}

func (s *Session) timeUp() {
	s.mu.Lock()
	if s.result != nil {
		s.mu.Unlock()
		return
	}
	s.pendingReason = ReasonTimeout
	s.mu.Unlock()

	if s.hooks.OnTimeUp != nil {
		s.hooks.OnTimeUp(s)
	}
	_, _ = s.ctrl.Finalize(context.Background())
}

// finalize is the controller's submit handler: it grades, hands the result to
// OnFinalize and on success closes the session.
func (s *Session) finalize(ctx context.Context) error {
	s.mu.Lock()
	if s.result != nil {
		s.mu.Unlock()
		return ErrFinished
	}
	reason := s.pendingReason
	all := s.answers.Clone()
	s.mu.Unlock()
	if reason == "" {
		reason = ReasonSubmitted
		if s.timer != nil && s.timer.Expired() {
			reason = ReasonTimeout
		}
	}

	wasPaused := false
	if s.timer != nil {
		wasPaused = s.timer.State().IsPaused
		s.timer.Pause()
	}

	graded, summary := answers.Grade(s.cfg.Questions, all)
	result := Result{
		SessionID:  s.cfg.ID,
		UserID:     s.cfg.UserID,
		Mode:       s.cfg.Mode,
		Reason:     reason,
		Answers:    all,
		Graded:     graded,
		Summary:    summary,
		FinishedAt: time.Now().UTC(),
	}
	if s.timer != nil {
		st := s.timer.State()
		result.Timer = &st
	}

	if s.hooks.OnFinalize != nil {
		if err := s.hooks.OnFinalize(ctx, s, result); err != nil {
			if s.timer != nil && !wasPaused {
				s.timer.Resume()
			}
			return err
		}
	}

	s.mu.Lock()
	s.result = &result
	s.pendingReason = ""
	close(s.done)
	s.mu.Unlock()

	s.acc.SetReview(true)
	return nil
}
