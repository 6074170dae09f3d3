package usecase

import "sync"

// Pending marks which multi-turn input a user's next text message completes.
type Pending int

const (
	PendingNone Pending = iota
	PendingMemo
	PendingFieldEdit
)

// ConvState is the transient per-user conversation state. It lives only in
// process memory; a restart drops in-flight edits.
type ConvState struct {
	Pending Pending
	CardID  string
	Field   string
}

// StateStore holds conversation state keyed by user identifier. Take is the
// only read path used by the router so that read-then-clear cannot interleave
// with a concurrent write for the same user.
type StateStore struct {
	mu     sync.Mutex
	states map[string]ConvState
}

func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]ConvState)}
}

// Set records a pending multi-turn input for a user, replacing any prior one.
func (s *StateStore) Set(userID string, state ConvState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
}

// Take returns the user's state and clears it in one step. Users with no
// pending input get PendingNone.
func (s *StateStore) Take(userID string) ConvState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return ConvState{}
	}
	delete(s.states, userID)
	return state
}

// UserLocks serializes event handling per user so one user's interactions
// stay ordered while different users proceed concurrently.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for userID and returns its unlock func.
func (l *UserLocks) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
