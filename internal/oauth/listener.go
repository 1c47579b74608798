package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
)

const shutdownTimeout = 2 * time.Second

// Listener runs a local HTTP server that receives streaming-provider OAuth
// redirects and pushes the resulting location into the location source. The
// coordinator core only routes on the resulting oauth-callback/oauth-error
// locations; token exchange happens in the callback view.
type Listener struct {
	addr   string
	src    *location.ProcessSource
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]domain.Provider // pending state nonce -> provider
	server *http.Server
}

// NewListener creates a listener bound to addr (e.g. "127.0.0.1:8123").
func NewListener(addr string, src *location.ProcessSource, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		addr:   addr,
		src:    src,
		logger: logger,
		states: make(map[string]domain.Provider),
	}
}

// Begin registers a new connect attempt for the provider and returns the
// state nonce that must round-trip through the provider redirect.
func (l *Listener) Begin(provider domain.Provider) string {
	state := uuid.NewString()

	l.mu.Lock()
	l.states[state] = provider
	l.mu.Unlock()

	l.logger.Info("oauth flow started", "provider", string(provider))
	return state
}

// AuthorizeURL builds the backend authorize URL for a connect attempt.
func (l *Listener) AuthorizeURL(apiBase string, provider domain.Provider, state string) string {
	redirect := fmt.Sprintf("http://%s/auth/%s/callback", l.addr, provider)

	params := url.Values{}
	params.Set("state", state)
	params.Set("redirect_uri", redirect)

	return fmt.Sprintf("%s/api/v1/connections/%s/authorize?%s", apiBase, provider, params.Encode())
}

// Start begins serving callback redirects in the background.
func (l *Listener) Start() {
	r := mux.NewRouter()
	r.HandleFunc("/auth/{provider}/callback", l.handleCallback).Methods(http.MethodGet)

	l.server = &http.Server{Addr: l.addr, Handler: r}

	go func() {
		if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.logger.Error("oauth listener failed", "error", err)
		}
	}()

	l.logger.Info("oauth listener started", "addr", l.addr)
}

// Shutdown stops the listener gracefully.
func (l *Listener) Shutdown() {
	if l.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	l.server.Shutdown(ctx)
}

// Handler exposes the callback handler for tests.
func (l *Listener) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/auth/{provider}/callback", l.handleCallback).Methods(http.MethodGet)
	return r
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider := domain.Provider(vars["provider"])

	q := r.URL.Query()
	state := q.Get("state")
	code := q.Get("code")
	errStr := q.Get("error")

	l.mu.Lock()
	expected, known := l.states[state]
	if known {
		delete(l.states, state)
	}
	l.mu.Unlock()

	if !known || expected != provider {
		l.logger.Warn("oauth callback with unknown state", "provider", string(provider))
		http.Error(w, "Invalid state", http.StatusBadRequest)
		l.pushError(provider, "invalid_state", "state mismatch")
		return
	}

	if errStr != "" {
		l.logger.Warn("oauth callback reported error", "provider", string(provider), "error", errStr)
		http.Error(w, "Authorization failed: "+errStr, http.StatusBadRequest)
		l.pushError(provider, errStr, q.Get("error_description"))
		return
	}

	if code == "" {
		l.logger.Warn("oauth callback missing code", "provider", string(provider))
		http.Error(w, "No code received", http.StatusBadRequest)
		l.pushError(provider, "missing_code", "provider sent no authorization code")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<html><body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>Account connected</h1>
<p>You can close this tab and return to nodrake.</p>
</body></html>`)

	query := url.Values{}
	query.Set("code", code)
	query.Set("state", state)
	l.src.Set(location.Location{
		Path:  fmt.Sprintf("/auth/%s/callback", provider),
		Query: query,
	})
}

// pushError routes the client to the oauth-error view. The path must not end
// in the reserved callback segment or the resolver would treat it as a
// successful callback.
func (l *Listener) pushError(provider domain.Provider, code, description string) {
	query := url.Values{}
	query.Set("error", code)
	if description != "" {
		query.Set("error_description", description)
	}
	query.Set("provider", string(provider))
	l.src.Set(location.Location{Path: "/sync", Query: query})
}
