package router

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
)

// Resolver derives the current Route from the location source and keeps it
// updated as the location changes. It owns RouteState exclusively.
type Resolver struct {
	src    location.Source
	logger *slog.Logger

	mu      sync.Mutex
	current Route
	subs    []func(Route)
	started bool
}

// NewResolver creates a resolver over the given location source.
func NewResolver(src location.Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		src:     src,
		logger:  logger,
		current: Route{Name: RouteHome, Params: map[string]string{}},
	}
}

// Initialize performs the first resolution synchronously, then subscribes to
// location changes for the lifetime of the process. Calling it again (e.g.
// on a bootstrap retry) re-resolves but does not spawn a second listener.
func (r *Resolver) Initialize() {
	r.setRoute(Resolve(r.src.Current()))

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		for loc := range r.src.Changes() {
			route := Resolve(loc)
			r.logger.Debug("location changed", "path", loc.Path, "route", string(route.Name))
			r.setRoute(route)
		}
	}()
}

// Current returns the latest resolved route.
func (r *Resolver) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers a handler invoked synchronously after each route
// change. Handlers must not call back into the resolver's mutators.
func (r *Resolver) Subscribe(fn func(Route)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

func (r *Resolver) setRoute(route Route) {
	r.mu.Lock()
	r.current = route
	subs := make([]func(Route), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(route)
	}
}

// Resolve maps a location to a route. The OAuth checks run first: a trailing
// "callback" segment always wins, then an error flag in the query, then the
// known-path map with home as the fallback.
func Resolve(loc location.Location) Route {
	segments := splitPath(loc.Path)

	// Reserved OAuth callback pattern: .../{provider}/callback
	if len(segments) > 0 && segments[len(segments)-1] == "callback" {
		provider := loc.Query.Get("provider")
		if provider == "" && len(segments) >= 2 {
			prev := segments[len(segments)-2]
			if prev != "auth" && prev != "oauth" {
				provider = prev
			}
		}
		return Route{
			Name:   RouteOAuthCallback,
			Params: map[string]string{"provider": provider},
		}
	}

	// Provider redirected back with an error flag
	if loc.Query.Has("error") {
		return Route{
			Name: RouteOAuthError,
			Params: map[string]string{
				"error":             loc.Query.Get("error"),
				"error_description": loc.Query.Get("error_description"),
			},
		}
	}

	if len(segments) == 0 {
		return Route{Name: RouteHome, Params: map[string]string{}}
	}

	switch segments[0] {
	case "home", "dashboard":
		return Route{Name: RouteHome, Params: map[string]string{}}
	case "login", "register":
		return Route{Name: RouteLogin, Params: map[string]string{}}
	case "settings":
		return Route{Name: RouteSettings, Params: map[string]string{}}
	case "sync":
		return Route{Name: RouteSync, Params: map[string]string{}}
	case "analytics":
		return Route{Name: RouteAnalytics, Params: map[string]string{}}
	case "graph":
		return Route{Name: RouteGraph, Params: map[string]string{}}
	case "artists":
		params := map[string]string{}
		if len(segments) >= 2 {
			params["id"] = segments[1]
		}
		return Route{Name: RouteArtistProfile, Params: params}
	default:
		// Unrecognized paths land on the default route
		return Route{Name: RouteHome, Params: map[string]string{}}
	}
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
