package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

// AuthState is the session store's observable state. User presence is the
// single source of truth for authentication; IsAuthenticated is derived,
// never stored.
type AuthState struct {
	User      *domain.UserProfile
	IsLoading bool
	Err       error
}

// IsAuthenticated reports whether a user profile is present.
func (s AuthState) IsAuthenticated() bool {
	return s.User != nil
}

// Store holds authentication state and exposes the session operations. It is
// the exclusive owner of AuthState; other components only read it.
type Store struct {
	api    domain.AccountAPI
	logger *slog.Logger

	mu    sync.Mutex
	state AuthState
	subs  []func(AuthState)
}

// NewStore creates a session store over the given account API.
func NewStore(api domain.AccountAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    api,
		logger: logger,
	}
}

// State returns the current auth state.
func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a handler invoked synchronously after each state
// change. Handlers must not call back into the store's mutators.
func (s *Store) Subscribe(fn func(AuthState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// FetchProfile performs one profile fetch. A backend "no session" answer
// resolves to unauthenticated with a nil error; any other failure is
// recorded on the state and returned to the caller, which owns retry policy.
// The store never retries internally.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.setState(func(st *AuthState) {
		st.IsLoading = true
		st.Err = nil
	})

	user, err := s.api.FetchProfile(ctx)
	switch {
	case err == nil:
		s.logger.Info("profile fetched", "user", user.ID)
		s.setState(func(st *AuthState) {
			st.User = user
			st.IsLoading = false
		})
		return nil

	case errors.Is(err, domain.ErrNoSession):
		s.logger.Info("no active session")
		s.setState(func(st *AuthState) {
			st.User = nil
			st.IsLoading = false
			st.Err = nil
		})
		return nil

	default:
		s.logger.Error("profile fetch failed", "error", err)
		s.setState(func(st *AuthState) {
			st.User = nil
			st.IsLoading = false
			st.Err = err
		})
		return err
	}
}

// Login authenticates with credentials and stores the resulting profile.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	return s.authenticate(ctx, creds, s.api.Login)
}

// Register creates an account and stores the resulting profile.
func (s *Store) Register(ctx context.Context, creds domain.Credentials) error {
	return s.authenticate(ctx, creds, s.api.Register)
}

func (s *Store) authenticate(ctx context.Context, creds domain.Credentials, op func(context.Context, domain.Credentials) (*domain.UserProfile, error)) error {
	s.setState(func(st *AuthState) {
		st.IsLoading = true
		st.Err = nil
	})

	user, err := op(ctx, creds)
	if err != nil {
		s.logger.Error("authentication failed", "error", err)
		s.setState(func(st *AuthState) {
			st.User = nil
			st.IsLoading = false
			st.Err = err
		})
		return err
	}

	s.logger.Info("authenticated", "user", user.ID)
	s.setState(func(st *AuthState) {
		st.User = user
		st.IsLoading = false
	})
	return nil
}

// Logout invalidates the session and resets the state to unauthenticated.
// The state resets even when the backend call fails; the token is gone
// locally either way.
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}

	s.setState(func(st *AuthState) {
		*st = AuthState{}
	})
	return err
}

func (s *Store) setState(mutate func(*AuthState)) {
	s.mu.Lock()
	mutate(&s.state)
	state := s.state
	subs := make([]func(AuthState), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
