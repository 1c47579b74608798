package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "nodrake-tui/1.0"
)

// Client talks to the nodrake backend REST API. It implements
// domain.AccountAPI and domain.ListAPI.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

// NewClient creates a new API client
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// SetToken replaces the session bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current session bearer token
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// FetchProfile returns the current user's profile. A 401 from the backend
// means "no session" and is surfaced as domain.ErrNoSession, not a failure.
func (c *Client) FetchProfile(ctx context.Context) (*domain.UserProfile, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return nil, domain.ErrNoSession
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	var dto userDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchMalformed, Err: fmt.Errorf("parsing profile: %w", err)}
	}
	return mapUser(dto), nil
}

// Login exchanges credentials for a session token and profile. The token is
// retained on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", creds)
}

// Register creates a new account and establishes a session
func (c *Client) Register(ctx context.Context, creds domain.Credentials) (*domain.UserProfile, error) {
	return c.authenticate(ctx, "/api/v1/auth/register", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds domain.Credentials) (*domain.UserProfile, error) {
	payload := map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}

	body, status, err := c.doRequest(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity {
		return nil, domain.ErrInvalidCredentials
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	var dto authResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchMalformed, Err: fmt.Errorf("parsing auth response: %w", err)}
	}

	c.SetToken(dto.Token)
	return mapUser(dto.User), nil
}

// Logout invalidates the session token server-side and clears it locally.
// A 401 means the token was already dead, which is fine.
func (c *Client) Logout(ctx context.Context) error {
	body, status, err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.SetToken("")
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return nil
	}
	return checkStatus(status, body)
}

// GetDNPList returns all entries on the user's DNP list
func (c *Client) GetDNPList(ctx context.Context) ([]domain.DNPEntry, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/dnp", nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, domain.ErrNoSession
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	var dtos []dnpEntryDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchMalformed, Err: fmt.Errorf("parsing DNP list: %w", err)}
	}

	entries := make([]domain.DNPEntry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, mapDNPEntry(dto))
	}
	return entries, nil
}

// GetConnections returns the user's linked provider accounts
func (c *Client) GetConnections(ctx context.Context) ([]domain.Connection, error) {
	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/connections", nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, domain.ErrNoSession
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	var dtos []connectionDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchMalformed, Err: fmt.Errorf("parsing connections: %w", err)}
	}

	conns := make([]domain.Connection, 0, len(dtos))
	for _, dto := range dtos {
		conns = append(conns, mapConnection(dto))
	}
	return conns, nil
}

// SearchArtists searches the catalog by name
func (c *Client) SearchArtists(ctx context.Context, query string) ([]domain.Artist, error) {
	params := url.Values{}
	params.Set("q", query)

	body, status, err := c.doRequest(ctx, http.MethodGet, "/api/v1/artists/search", params, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	var dtos []artistDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchMalformed, Err: fmt.Errorf("parsing artists: %w", err)}
	}

	artists := make([]domain.Artist, 0, len(dtos))
	for _, dto := range dtos {
		artists = append(artists, mapArtist(dto))
	}
	return artists, nil
}

// CompleteConnection exchanges an OAuth authorization code for a linked
// provider account
func (c *Client) CompleteConnection(ctx context.Context, provider domain.Provider, code string) error {
	path := fmt.Sprintf("/api/v1/connections/%s/callback", provider)
	payload := map[string]string{"code": code}

	body, status, err := c.doRequest(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return domain.ErrNoSession
	}
	return checkStatus(status, body)
}

// doRequest performs an authenticated HTTP request and returns the raw body
// and status. Transport-level failures come back as classified FetchErrors.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, int, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "url", reqURL, "error", err)
		return nil, 0, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &domain.FetchError{Kind: domain.FetchTransport, Err: fmt.Errorf("reading response: %w", err)}
	}

	return body, resp.StatusCode, nil
}

// classifyTransport distinguishes deadline expiry from other transport
// failures so the coordinator can log the cause.
func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return &domain.FetchError{Kind: domain.FetchTimeout, Err: err}
	}
	return &domain.FetchError{Kind: domain.FetchTransport, Err: err}
}

// checkStatus converts a non-2xx response into a classified server error,
// preserving the backend's structured message when one is present.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	cause := fmt.Errorf("unexpected status %d", status)
	var dto errorDTO
	if err := json.Unmarshal(body, &dto); err == nil && dto.Message != "" {
		cause = fmt.Errorf("%s (status %d)", dto.Message, status)
	}

	return &domain.FetchError{Kind: domain.FetchServer, Status: status, Err: cause}
}
