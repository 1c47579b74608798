package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", log.NullLogger())
}

func TestFetchProfileSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u-1","email":"ada@example.com","display_name":"Ada","created_at":"2025-03-01T00:00:00Z","entry_count":3}`))
	})

	user, err := client.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, 3, user.EntryCount)
}

func TestFetchProfileNoSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchProfile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestFetchProfileServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"internal","message":"database unavailable"}`))
	})

	_, err := client.FetchProfile(context.Background())
	fe, ok := domain.ClassifyFetch(err)
	require.True(t, ok)
	assert.Equal(t, domain.FetchServer, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestFetchProfileMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 42`))
	})

	_, err := client.FetchProfile(context.Background())
	fe, ok := domain.ClassifyFetch(err)
	require.True(t, ok)
	assert.Equal(t, domain.FetchMalformed, fe.Kind)
}

func TestFetchProfileTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, "", log.NullLogger())
	_, err := client.FetchProfile(context.Background())

	fe, ok := domain.ClassifyFetch(err)
	require.True(t, ok)
	assert.Equal(t, domain.FetchTransport, fe.Kind)
}

func TestFetchProfileTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchProfile(ctx)
	fe, ok := domain.ClassifyFetch(err)
	require.True(t, ok)
	assert.Equal(t, domain.FetchTimeout, fe.Kind)
}

func TestLoginRetainsToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		w.Write([]byte(`{"token":"tok-123","user":{"id":"u-1","email":"ada@example.com"}}`))
	})

	user, err := client.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "tok-123", client.Token())
}

func TestLoginInvalidCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusUnprocessableEntity} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Empty(t, client.Token())
	}
}

func TestRegister(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		w.Write([]byte(`{"token":"tok-9","user":{"id":"u-2","email":"new@example.com"}}`))
	})

	user, err := client.Register(context.Background(), domain.Credentials{Email: "new@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u-2", user.ID)
	assert.Equal(t, "tok-9", client.Token())
}

func TestLogoutClearsTokenEvenOn401(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	client.SetToken("stale")

	err := client.Logout(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, client.Token())
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})
	client.SetToken("tok-abc")

	_, err := client.GetDNPList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestGetDNPList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dnp", r.URL.Path)
		w.Write([]byte(`[
			{"artist":{"id":"a-1","name":"Drake","aliases":["Drizzy"]},"tags":["personal"],"added_at":"2025-01-01T00:00:00Z"},
			{"artist":{"id":"a-2","name":"Kanye West"},"note":"n","added_at":"2025-02-01T00:00:00Z"}
		]`))
	})

	entries, err := client.GetDNPList(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Drake", entries[0].Artist.Name)
	assert.Equal(t, []string{"Drizzy"}, entries[0].Artist.Aliases)
	assert.Equal(t, []string{"personal"}, entries[0].Tags)
	assert.Equal(t, "n", entries[1].Note)
}

func TestGetConnections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/connections", r.URL.Path)
		w.Write([]byte(`[{"provider":"spotify","account_name":"ada","connected_at":"2025-01-01T00:00:00Z"}]`))
	})

	conns, err := client.GetConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, domain.ProviderSpotify, conns[0].Provider)
	assert.Equal(t, "ada", conns[0].AccountName)
}

func TestSearchArtists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/artists/search", r.URL.Path)
		assert.Equal(t, "drake", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"id":"a-1","name":"Drake"}]`))
	})

	artists, err := client.SearchArtists(context.Background(), "drake")
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "Drake", artists[0].Name)
}

func TestCompleteConnection(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/connections/spotify/callback", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.CompleteConnection(context.Background(), domain.ProviderSpotify, "code-77")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"code-77"}`, gotBody)
}

func TestCompleteConnectionExpiredSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.CompleteConnection(context.Background(), domain.ProviderSpotify, "code-77")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}
