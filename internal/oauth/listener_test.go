package oauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/log"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/router"
)

func newTestListener() (*Listener, *location.ProcessSource) {
	src := location.NewProcessSource("/")
	return NewListener("127.0.0.1:8123", src, log.NullLogger()), src
}

func TestCallbackSuccessPushesCallbackLocation(t *testing.T) {
	l, src := newTestListener()
	state := l.Begin(domain.ProviderSpotify)

	req := httptest.NewRequest(http.MethodGet, "/auth/spotify/callback?code=abc&state="+state, nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account connected")

	loc := src.Current()
	assert.Equal(t, "/auth/spotify/callback", loc.Path)
	assert.Equal(t, "abc", loc.Query.Get("code"))
	assert.Equal(t, state, loc.Query.Get("state"))

	// The pushed location resolves to the callback route
	route := router.Resolve(loc)
	assert.Equal(t, router.RouteOAuthCallback, route.Name)
	assert.Equal(t, "spotify", route.Param("provider"))
}

func TestCallbackUnknownStateRejected(t *testing.T) {
	l, src := newTestListener()

	req := httptest.NewRequest(http.MethodGet, "/auth/spotify/callback?code=abc&state=forged", nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	route := router.Resolve(src.Current())
	assert.Equal(t, router.RouteOAuthError, route.Name)
	assert.Equal(t, "invalid_state", route.Param("error"))
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	l, _ := newTestListener()
	state := l.Begin(domain.ProviderSpotify)

	req := httptest.NewRequest(http.MethodGet, "/auth/spotify/callback?code=abc&state="+state, nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Replays of the same state fail
	rec = httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackProviderMismatchRejected(t *testing.T) {
	l, _ := newTestListener()
	state := l.Begin(domain.ProviderSpotify)

	req := httptest.NewRequest(http.MethodGet, "/auth/tidal/callback?code=abc&state="+state, nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackProviderErrorRoutesToOAuthError(t *testing.T) {
	l, src := newTestListener()
	state := l.Begin(domain.ProviderSpotify)

	req := httptest.NewRequest(http.MethodGet,
		"/auth/spotify/callback?error=access_denied&error_description=user+cancelled&state="+state, nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	loc := src.Current()
	// The error location must not end in the reserved callback segment
	assert.False(t, strings.HasSuffix(loc.Path, "/callback"))

	route := router.Resolve(loc)
	assert.Equal(t, router.RouteOAuthError, route.Name)
	assert.Equal(t, "access_denied", route.Param("error"))
	assert.Equal(t, "user cancelled", route.Param("error_description"))
}

func TestCallbackMissingCode(t *testing.T) {
	l, src := newTestListener()
	state := l.Begin(domain.ProviderSpotify)

	req := httptest.NewRequest(http.MethodGet, "/auth/spotify/callback?state="+state, nil)
	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	route := router.Resolve(src.Current())
	assert.Equal(t, router.RouteOAuthError, route.Name)
	assert.Equal(t, "missing_code", route.Param("error"))
}

func TestBeginReturnsUniqueStates(t *testing.T) {
	l, _ := newTestListener()
	a := l.Begin(domain.ProviderSpotify)
	b := l.Begin(domain.ProviderSpotify)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestAuthorizeURL(t *testing.T) {
	l, _ := newTestListener()
	u := l.AuthorizeURL("https://api.nodrake.in", domain.ProviderSpotify, "st-1")

	assert.Contains(t, u, "https://api.nodrake.in/api/v1/connections/spotify/authorize?")
	assert.Contains(t, u, "state=st-1")
	assert.Contains(t, u, "redirect_uri=")
	assert.Contains(t, u, "127.0.0.1%3A8123%2Fauth%2Fspotify%2Fcallback")
}
