package tui

import (
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/bootstrap"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/router"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/session"
)

// Screen identifies the top-level view to render.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenConnectionError
	ScreenOAuthCallback
	ScreenOAuthError
	ScreenLogin
	ScreenHome
	ScreenSettings
	ScreenSync
	ScreenAnalytics
	ScreenGraph
	ScreenArtistProfile
)

// String returns a short label for the screen.
func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenConnectionError:
		return "connection-error"
	case ScreenOAuthCallback:
		return "oauth-callback"
	case ScreenOAuthError:
		return "oauth-error"
	case ScreenLogin:
		return "login"
	case ScreenHome:
		return "home"
	case ScreenSettings:
		return "settings"
	case ScreenSync:
		return "sync"
	case ScreenAnalytics:
		return "analytics"
	case ScreenGraph:
		return "graph"
	case ScreenArtistProfile:
		return "artist-profile"
	default:
		return "unknown"
	}
}

// Selection is the view selector's verdict.
type Selection struct {
	Screen   Screen
	ArtistID string // Set for ScreenArtistProfile, empty when the route has no id
	InShell  bool   // Rendered inside the common authenticated layout
	Provider string // Set for ScreenOAuthCallback
	OAuthErr string // Set for ScreenOAuthError
}

// SelectView maps (bootstrap state, route, auth state) to the view to
// render. It is pure and re-evaluated on every change of any input.
//
// The branch order is load-bearing: the OAuth-callback check runs before the
// connection-error, oauth-error, and auth branches so an in-flight OAuth flow
// completes even under a failed bootstrap or a stale error flag (the callback
// itself may establish the session), and the connection-error branch yields
// to an already-authenticated session.
func SelectView(boot bootstrap.State, route router.Route, auth session.AuthState) Selection {
	if !boot.IsInitialized {
		return Selection{Screen: ScreenLoading}
	}

	if route.Name == router.RouteOAuthCallback {
		return Selection{Screen: ScreenOAuthCallback, Provider: route.Param("provider")}
	}

	if boot.InitError && !auth.IsAuthenticated() {
		return Selection{Screen: ScreenConnectionError}
	}

	if route.Name == router.RouteOAuthError {
		return Selection{Screen: ScreenOAuthError, OAuthErr: route.Param("error")}
	}

	if auth.IsAuthenticated() {
		switch route.Name {
		case router.RouteSettings:
			return Selection{Screen: ScreenSettings, InShell: true}
		case router.RouteSync:
			return Selection{Screen: ScreenSync, InShell: true}
		case router.RouteAnalytics:
			return Selection{Screen: ScreenAnalytics, InShell: true}
		case router.RouteGraph:
			return Selection{Screen: ScreenGraph, InShell: true}
		case router.RouteArtistProfile:
			// Full-bleed, outside the common shell
			return Selection{Screen: ScreenArtistProfile, ArtistID: route.Param("id")}
		default:
			// Anything unrecognized lands on the default authenticated view
			return Selection{Screen: ScreenHome, InShell: true}
		}
	}

	return Selection{Screen: ScreenLogin}
}
