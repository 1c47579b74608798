package domain

import "time"

// UserProfile represents the authenticated user's account as returned by the
// backend. The bootstrap path only cares about presence/absence; the
// authenticated views read the rest.
type UserProfile struct {
	ID          string    // Server-assigned unique identifier
	Email       string    // Login email
	DisplayName string    // Preferred display name
	CreatedAt   time.Time // Account creation time
	EntryCount  int       // Number of entries on the user's DNP list
}

// Artist represents a catalog artist that can appear on a DNP list.
type Artist struct {
	ID       string   // Canonical catalog identifier
	Name     string   // Display name
	Aliases  []string // Alternate names and spellings
	ImageURL string   // Avatar/press image URL
}

// DNPEntry is a single "do not play" entry on the user's list.
type DNPEntry struct {
	Artist  Artist    // The blocked artist
	Tags    []string  // User-assigned tags
	Note    string    // Free-form note
	AddedAt time.Time // When the entry was created
}

// Provider identifies a streaming service the user can connect over OAuth.
type Provider string

const (
	ProviderSpotify    Provider = "spotify"
	ProviderAppleMusic Provider = "apple_music"
	ProviderTidal      Provider = "tidal"
)

// Connection represents a linked streaming-provider account.
type Connection struct {
	Provider    Provider  // Which service
	AccountName string    // Display name on the provider side
	ConnectedAt time.Time // When the link was established
	LastSyncAt  time.Time // Last successful enforcement sync
}

// Credentials carries a login or registration request.
type Credentials struct {
	Email    string
	Password string
}
