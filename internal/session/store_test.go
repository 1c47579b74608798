package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/log"
)

type fakeAccountAPI struct {
	profile    *domain.UserProfile
	profileErr error

	loginUser *domain.UserProfile
	loginErr  error

	logoutErr   error
	fetchCalls  int
	logoutCalls int
}

func (f *fakeAccountAPI) FetchProfile(ctx context.Context) (*domain.UserProfile, error) {
	f.fetchCalls++
	return f.profile, f.profileErr
}

func (f *fakeAccountAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	return f.loginUser, f.loginErr
}

func (f *fakeAccountAPI) Register(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	return f.loginUser, f.loginErr
}

func (f *fakeAccountAPI) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func testUser() *domain.UserProfile {
	return &domain.UserProfile{
		ID:        "u-1",
		Email:     "ada@example.com",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchProfileSuccess(t *testing.T) {
	api := &fakeAccountAPI{profile: testUser()}
	store := NewStore(api, log.NullLogger())

	err := store.FetchProfile(context.Background())
	require.NoError(t, err)

	state := store.State()
	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "u-1", state.User.ID)
	assert.False(t, state.IsLoading)
	assert.NoError(t, state.Err)
}

func TestFetchProfileNoSession(t *testing.T) {
	api := &fakeAccountAPI{profileErr: domain.ErrNoSession}
	store := NewStore(api, log.NullLogger())

	// "No session" is a normal negative result, not a failure
	err := store.FetchProfile(context.Background())
	require.NoError(t, err)

	state := store.State()
	assert.False(t, state.IsAuthenticated())
	assert.NoError(t, state.Err)
}

func TestFetchProfileFailure(t *testing.T) {
	fetchErr := &domain.FetchError{Kind: domain.FetchTransport, Err: errors.New("refused")}
	api := &fakeAccountAPI{profileErr: fetchErr}
	store := NewStore(api, log.NullLogger())

	err := store.FetchProfile(context.Background())
	require.Error(t, err)

	state := store.State()
	assert.False(t, state.IsAuthenticated())
	assert.Error(t, state.Err)

	// The store never retries on its own
	assert.Equal(t, 1, api.fetchCalls)
}

func TestFetchProfileLoadingTransitions(t *testing.T) {
	api := &fakeAccountAPI{profile: testUser()}
	store := NewStore(api, log.NullLogger())

	var states []AuthState
	store.Subscribe(func(s AuthState) { states = append(states, s) })

	require.NoError(t, store.FetchProfile(context.Background()))

	require.Len(t, states, 2)
	assert.True(t, states[0].IsLoading)
	assert.False(t, states[1].IsLoading)
	assert.True(t, states[1].IsAuthenticated())
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeAccountAPI{loginUser: testUser()}
	store := NewStore(api, log.NullLogger())

	err := store.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, store.State().IsAuthenticated())
}

func TestLoginInvalidCredentials(t *testing.T) {
	api := &fakeAccountAPI{loginErr: domain.ErrInvalidCredentials}
	store := NewStore(api, log.NullLogger())

	err := store.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	state := store.State()
	assert.False(t, state.IsAuthenticated())
	assert.ErrorIs(t, state.Err, domain.ErrInvalidCredentials)
}

func TestRegisterSuccess(t *testing.T) {
	api := &fakeAccountAPI{loginUser: testUser()}
	store := NewStore(api, log.NullLogger())

	err := store.Register(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, store.State().IsAuthenticated())
}

func TestLogoutResetsState(t *testing.T) {
	api := &fakeAccountAPI{profile: testUser()}
	store := NewStore(api, log.NullLogger())
	require.NoError(t, store.FetchProfile(context.Background()))
	require.True(t, store.State().IsAuthenticated())

	err := store.Logout(context.Background())
	require.NoError(t, err)
	assert.False(t, store.State().IsAuthenticated())
	assert.Equal(t, 1, api.logoutCalls)
}

func TestLogoutResetsStateEvenOnAPIError(t *testing.T) {
	api := &fakeAccountAPI{profile: testUser(), logoutErr: errors.New("backend down")}
	store := NewStore(api, log.NullLogger())
	require.NoError(t, store.FetchProfile(context.Background()))

	err := store.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, store.State().IsAuthenticated())
}

func TestIsAuthenticatedDerivedFromUserPresence(t *testing.T) {
	assert.False(t, AuthState{}.IsAuthenticated())
	assert.False(t, AuthState{IsLoading: true}.IsAuthenticated())
	assert.True(t, AuthState{User: testUser()}.IsAuthenticated())
}
