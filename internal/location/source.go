package location

import (
	"net/url"
	"strings"
	"sync"
)

// Location is a snapshot of the ambient "current URL": a path and its query.
type Location struct {
	Path  string
	Query url.Values
}

// Parse derives a Location from a raw deep link or path. Both plain paths
// ("/settings") and app scheme links ("nodrake://settings/x?y=z") are
// accepted; for scheme links the host becomes the first path segment.
func Parse(raw string) Location {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{Path: "/", Query: url.Values{}}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{Path: "/", Query: url.Values{}}
	}

	path := u.Path
	if u.Scheme != "" && u.Host != "" {
		path = "/" + u.Host + u.Path
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query := u.Query()
	if query == nil {
		query = url.Values{}
	}

	return Location{Path: path, Query: query}
}

// Source provides read-only access to the current location plus a
// change-notification channel. The route resolver depends on this
// abstraction instead of ambient process state.
type Source interface {
	// Current returns the latest location
	Current() Location

	// Changes delivers each subsequent location change
	Changes() <-chan Location
}

// ProcessSource is the in-process Source implementation. It is fed by the
// startup deep link, the OAuth callback listener, and UI navigation.
type ProcessSource struct {
	mu      sync.Mutex
	current Location
	ch      chan Location
}

// NewProcessSource creates a source seeded from a raw deep link
// (empty string means the root path).
func NewProcessSource(initial string) *ProcessSource {
	return &ProcessSource{
		current: Parse(initial),
		ch:      make(chan Location, 16),
	}
}

// Current returns the latest location.
func (s *ProcessSource) Current() Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Changes delivers each subsequent location change.
func (s *ProcessSource) Changes() <-chan Location {
	return s.ch
}

// Set replaces the current location and notifies listeners.
func (s *ProcessSource) Set(loc Location) {
	if loc.Query == nil {
		loc.Query = url.Values{}
	}

	s.mu.Lock()
	s.current = loc
	s.mu.Unlock()

	select {
	case s.ch <- loc:
	default: // Non-blocking if channel full
	}
}

// Navigate parses a raw link and sets it as the current location.
func (s *ProcessSource) Navigate(raw string) {
	s.Set(Parse(raw))
}
