package journey

import (
	"log/slog"
	"sync"
)

// Listener receives the state produced by each dispatched action.
type Listener func(State, Action)

// Store serialises actions for one learner and fans the result out to listeners.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{state: InitialState(), listeners: make(map[int]Listener), logger: logger}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the actions in order and returns the resulting state.
// Listeners run after the lock is released.
func (s *Store) Dispatch(actions ...Action) State {
	type notification struct {
		state  State
		action Action
	}

	s.mu.Lock()
	notes := make([]notification, 0, len(actions))
	for _, a := range actions {
		s.state = Reduce(s.state, a)
		notes = append(notes, notification{state: s.state, action: a})
	}
	final := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, n := range notes {
		s.logger.Debug("Journey action dispatched", "action", Name(n.action), "loading", n.state.IsLoading)
		for _, l := range listeners {
			l(n.state, n.action)
		}
	}
	return final
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Registry hands out one Store per learner.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
	logger *slog.Logger
	// onCreate lets callers attach listeners to stores as they are created.
	onCreate func(userID string, store *Store)
}

func NewRegistry(logger *slog.Logger, onCreate func(userID string, store *Store)) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{stores: make(map[string]*Store), logger: logger, onCreate: onCreate}
}

func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	store, ok := r.stores[userID]
	if !ok {
		store = NewStore(r.logger.With("user_id", userID))
		r.stores[userID] = store
	}
	r.mu.Unlock()

	if !ok && r.onCreate != nil {
		r.onCreate(userID, store)
	}
	return store
}

// Forget drops the learner's store; the next For starts from the initial state.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}
