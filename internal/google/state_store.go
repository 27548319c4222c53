package google

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long a user may sit on the consent screen.
const DefaultStateTTL = 10 * time.Minute

// ErrInvalidState is returned for unknown, expired or already used OAuth
// state values.
var ErrInvalidState = errors.New("invalid or expired oauth state")

type pendingState struct {
	account   string
	expiresAt time.Time
}

// StateStore binds OAuth state values to the account that started the flow.
// Each state can be consumed once.
type StateStore struct {
	mu     sync.Mutex
	states map[string]pendingState
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewStateStore creates a state store. A non-positive ttl uses DefaultStateTTL.
func NewStateStore(ttl time.Duration, logger *slog.Logger) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{
		states: make(map[string]pendingState),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Create returns a fresh random state bound to account.
func (s *StateStore) Create(account string) string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeExpiredLocked()
	s.states[state] = pendingState{account: account, expiresAt: s.now().Add(s.ttl)}
	s.logger.Debug("Saved authorization state", "expires_in", s.ttl)
	return state
}

// Consume validates state and returns the account it was created for. The
// state is removed whether or not it is still valid.
func (s *StateStore) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.states[state]
	if !ok {
		return "", ErrInvalidState
	}
	delete(s.states, state)

	if s.now().After(pending.expiresAt) {
		return "", ErrInvalidState
	}
	return pending.account, nil
}

// Len returns the number of pending states, expired ones included.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *StateStore) removeExpiredLocked() {
	now := s.now()
	for k, v := range s.states {
		if now.After(v.expiresAt) {
			delete(s.states, k)
		}
	}
}
