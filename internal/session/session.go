package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shipgate/internal/gateway"
	"shipgate/internal/model"
)

// Backend is the slice of the aggregator API the session store needs.
type Backend interface {
	Profile(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context) error
}

// Store holds the process-wide authenticated user. The gateway already
// performs the silent one-shot refresh on 401; by the time an unauthorized
// error reaches this store the session is genuinely gone and we sign out.
type Store struct {
	backend  Backend
	interval time.Duration

	mu   sync.RWMutex
	user *model.User
	subs []func(*model.User)
}

func NewStore(backend Backend, interval time.Duration) *Store {
	return &Store{backend: backend, interval: interval}
}

// User returns the cached profile, nil when signed out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Subscribe registers fn to run after every session change. fn receives nil
// on sign-out.
func (s *Store) Subscribe(fn func(*model.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Check re-validates the session against the backend. An unauthorized
// response clears the cached user; other errors leave it untouched so a
// transient network failure does not log the user out.
func (s *Store) Check(ctx context.Context) (*model.User, error) {
	user, err := s.backend.Profile(ctx)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			s.SignOut()
		}
		return nil, fmt.Errorf("session check: %w", err)
	}
	s.set(user)
	return user, nil
}

// SignOut drops the cached session without calling the backend. Used by the
// gateway's auth-failure hook.
func (s *Store) SignOut() {
	s.set(nil)
}

// Logout ends the backend session and clears the cache. The cache is cleared
// even when the backend call fails.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	s.SignOut()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Store) set(user *model.User) {
	s.mu.Lock()
	s.user = user
	subs := make([]func(*model.User), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}

// Run re-validates the session on a ticker until ctx is cancelled. Only an
// active session is re-checked; a signed-out store stays quiet.
func (s *Store) Run(ctx context.Context) {
	slog.Info("starting session refresh worker", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session refresh worker stopped")
			return
		case <-ticker.C:
			if s.User() == nil {
				continue
			}
			if _, err := s.Check(ctx); err != nil {
				slog.Warn("session re-validation failed", "error", err)
			}
		}
	}
}
