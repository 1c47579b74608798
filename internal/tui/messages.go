package tui

import (
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/bootstrap"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/router"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/session"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// BootstrapChangedMsg signals a bootstrap state transition
type BootstrapChangedMsg struct {
	State bootstrap.State
}

// AuthChangedMsg signals an auth state change
type AuthChangedMsg struct {
	State session.AuthState
}

// RouteChangedMsg signals a route change
type RouteChangedMsg struct {
	Route router.Route
}

// BootstrapSettledMsg signals that a bootstrap attempt has finished
type BootstrapSettledMsg struct{}

// LoginResultMsg signals the outcome of a login or registration
type LoginResultMsg struct {
	Err error
}

// LogoutDoneMsg signals that logout completed
type LogoutDoneMsg struct{}

// DNPLoadedMsg signals that the DNP list has been loaded
type DNPLoadedMsg struct {
	Entries   []domain.DNPEntry
	FromCache bool
}

// ConnectionsLoadedMsg signals that provider connections have been loaded
type ConnectionsLoadedMsg struct {
	Connections []domain.Connection
}

// ArtistResultsMsg signals that artist search results are ready
type ArtistResultsMsg struct {
	Artists []domain.Artist
	Query   string
}

// ConnectStartedMsg carries the authorize URL for a provider connect flow
type ConnectStartedMsg struct {
	Provider domain.Provider
	URL      string
}

// ConnectCompletedMsg signals the outcome of an OAuth code exchange
type ConnectCompletedMsg struct {
	Provider domain.Provider
	Err      error
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
