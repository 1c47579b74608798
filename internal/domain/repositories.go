package domain

import (
	"context"
)

// AccountAPI provides access to the backend's account and session endpoints.
// The session store depends on this abstraction rather than the HTTP client
// so coordination logic can be tested without a network.
type AccountAPI interface {
	// FetchProfile returns the current user's profile. Returns ErrNoSession
	// when the backend reports an anonymous caller.
	FetchProfile(ctx context.Context) (*UserProfile, error)

	// Login exchanges credentials for a session token and profile
	Login(ctx context.Context, creds Credentials) (*UserProfile, error)

	// Register creates a new account and establishes a session
	Register(ctx context.Context, creds Credentials) (*UserProfile, error)

	// Logout invalidates the current session token
	Logout(ctx context.Context) error
}

// ListAPI provides access to the user's DNP list and provider connections.
type ListAPI interface {
	// GetDNPList returns all entries on the user's DNP list
	GetDNPList(ctx context.Context) ([]DNPEntry, error)

	// GetConnections returns the user's linked provider accounts
	GetConnections(ctx context.Context) ([]Connection, error)

	// SearchArtists searches the catalog by name
	SearchArtists(ctx context.Context, query string) ([]Artist, error)

	// CompleteConnection exchanges an OAuth authorization code for a linked
	// provider account
	CompleteConnection(ctx context.Context, provider Provider, code string) error
}

// Cache persists profile and DNP data locally so authenticated views render
// without waiting on the network.
type Cache interface {
	// GetProfile returns the cached profile, or false if none is stored
	GetProfile() (*UserProfile, bool)

	// SetProfile stores the profile
	SetProfile(profile *UserProfile) error

	// GetDNPList returns the cached DNP entries, or false if none are stored
	GetDNPList() ([]DNPEntry, bool)

	// SetDNPList stores the DNP entries
	SetDNPList(entries []DNPEntry) error

	// Clear removes all cached data (logout)
	Clear() error

	// Close releases the underlying database
	Close() error
}
