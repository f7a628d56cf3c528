package timer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// DefaultTick is the countdown step applied on every tick.
const DefaultTick = time.Second

var (
	ErrNegativeDuration = errors.New("timer duration must not be negative")
	ErrInvalidTick      = errors.New("timer tick must be positive")
	ErrInvalidBonus     = errors.New("added time must be positive")
	ErrInvalidState     = errors.New("timer snapshot is inconsistent")
)

// Config configures a countdown. Callbacks are optional.
type Config struct {
	InitialDuration time.Duration
	Tick            time.Duration
	Warnings        []time.Duration

	// OnTimeUp fires once per reset cycle when the remaining time reaches zero.
	OnTimeUp func()
	// OnWarning fires once per threshold per reset cycle.
	OnWarning func(threshold, remaining time.Duration)
}

// State is a point-in-time copy of the countdown.
type State struct {
	TotalTime     time.Duration   `json:"total_time"`
	TimeRemaining time.Duration   `json:"time_remaining"`
	TimeElapsed   time.Duration   `json:"time_elapsed"`
	IsPaused      bool            `json:"is_paused"`
	IsActive      bool            `json:"is_active"`
	Warnings      []time.Duration `json:"warnings"`
	TimeUpFired   bool            `json:"time_up_fired"`
}

// View is the millisecond representation exposed to clients.
type View struct {
	TotalTimeMs     int64   `json:"total_time_ms"`
	TimeRemainingMs int64   `json:"time_remaining_ms"`
	TimeElapsedMs   int64   `json:"time_elapsed_ms"`
	IsPaused        bool    `json:"is_paused"`
	IsActive        bool    `json:"is_active"`
	WarningsMs      []int64 `json:"warnings_ms"`
}

func (s State) View() View {
	warnings := make([]int64, len(s.Warnings))
	for i, w := range s.Warnings {
		warnings[i] = w.Milliseconds()
	}
	return View{
		TotalTimeMs:     s.TotalTime.Milliseconds(),
		TimeRemainingMs: s.TimeRemaining.Milliseconds(),
		TimeElapsedMs:   s.TimeElapsed.Milliseconds(),
		IsPaused:        s.IsPaused,
		IsActive:        s.IsActive,
		WarningsMs:      warnings,
	}
}

// Timer is a countdown driven by Tick. All methods are safe for concurrent use;
// callbacks are invoked after the internal lock is released.
type Timer struct {
	mu sync.Mutex

	initial    time.Duration
	tick       time.Duration
	thresholds []time.Duration
	onTimeUp   func()
	onWarning  func(threshold, remaining time.Duration)

	total     time.Duration
	remaining time.Duration
	paused    bool
	active    bool
	crossed   map[time.Duration]struct{}
	fired     bool
}

// New validates cfg and returns an inactive timer holding the full initial duration.
func New(cfg Config) (*Timer, error) {
	if cfg.InitialDuration < 0 {
		return nil, ErrNegativeDuration
	}
	tick := cfg.Tick
	if tick == 0 {
		tick = DefaultTick
	}
	if tick < 0 {
		return nil, ErrInvalidTick
	}

	thresholds, err := normalizeThresholds(cfg.Warnings)
	if err != nil {
		return nil, err
	}

	return &Timer{
		initial:    cfg.InitialDuration,
		tick:       tick,
		thresholds: thresholds,
		onTimeUp:   cfg.OnTimeUp,
		onWarning:  cfg.OnWarning,
		total:      cfg.InitialDuration,
		remaining:  cfg.InitialDuration,
		crossed:    make(map[time.Duration]struct{}),
	}, nil
}

// Restore rebuilds a timer from a persisted snapshot. The configured initial
// duration is still used by Reset.
func Restore(cfg Config, st State) (*Timer, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if st.TotalTime < 0 || st.TimeRemaining < 0 || st.TimeRemaining > st.TotalTime {
		return nil, ErrInvalidState
	}

	t.total = st.TotalTime
	t.remaining = st.TimeRemaining
	t.paused = st.IsPaused
	t.active = st.IsActive
	t.fired = st.TimeUpFired
	for _, w := range st.Warnings {
		t.crossed[w] = struct{}{}
	}
	return t, nil
}

func normalizeThresholds(in []time.Duration) ([]time.Duration, error) {
	seen := make(map[time.Duration]struct{}, len(in))
	out := make([]time.Duration, 0, len(in))
	for _, w := range in {
		if w < 0 {
			return nil, ErrNegativeDuration
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out, nil
}

func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = true
	t.paused = false
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Reset restores the initial duration, clears crossed warnings and re-arms the
// time-up callback. The timer is left inactive.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = t.initial
	t.remaining = t.initial
	t.paused = false
	t.active = false
	t.fired = false
	t.crossed = make(map[time.Duration]struct{})
}

// AddTime grants bonus time. Pause and active flags are untouched.
func (t *Timer) AddTime(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidBonus
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += d
	t.remaining += d
	return nil
}

// Tick advances the countdown by one step if the timer is active and not paused.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.active || t.paused {
		t.mu.Unlock()
		return
	}

	t.remaining -= t.tick
	if t.remaining < 0 {
		t.remaining = 0
	}

	var crossed []time.Duration
	for _, th := range t.thresholds {
		if _, ok := t.crossed[th]; ok {
			continue
		}
		if t.remaining <= th {
			t.crossed[th] = struct{}{}
			crossed = append(crossed, th)
		}
	}

	timeUp := false
	if t.remaining == 0 && !t.fired {
		t.fired = true
		t.active = false
		timeUp = true
	}

	remaining := t.remaining
	onWarning, onTimeUp := t.onWarning, t.onTimeUp
	t.mu.Unlock()

	if onWarning != nil {
		for _, th := range crossed {
			onWarning(th, remaining)
		}
	}
	if timeUp && onTimeUp != nil {
		onTimeUp()
	}
}

// Run ticks on a fixed period until ctx is done.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	warnings := make([]time.Duration, 0, len(t.crossed))
	for w := range t.crossed {
		warnings = append(warnings, w)
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i] > warnings[j] })

	return State{
		TotalTime:     t.total,
		TimeRemaining: t.remaining,
		TimeElapsed:   t.total - t.remaining,
		IsPaused:      t.paused,
		IsActive:      t.active,
		Warnings:      warnings,
		TimeUpFired:   t.fired,
	}
}

func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining == 0
}
