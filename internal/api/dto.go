package api

import (
	"time"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

// userDTO is the backend's user payload
type userDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	EntryCount  int       `json:"entry_count"`
}

// authResponseDTO is returned by login and register
type authResponseDTO struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

// artistDTO is the backend's artist payload
type artistDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// dnpEntryDTO is a single DNP list entry
type dnpEntryDTO struct {
	Artist  artistDTO `json:"artist"`
	Tags    []string  `json:"tags,omitempty"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// connectionDTO is a linked provider account
type connectionDTO struct {
	Provider    string    `json:"provider"`
	AccountName string    `json:"account_name"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSyncAt  time.Time `json:"last_sync_at"`
}

// errorDTO is the backend's structured error body
type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapUser(dto userDTO) *domain.UserProfile {
	return &domain.UserProfile{
		ID:          dto.ID,
		Email:       dto.Email,
		DisplayName: dto.DisplayName,
		CreatedAt:   dto.CreatedAt,
		EntryCount:  dto.EntryCount,
	}
}

func mapArtist(dto artistDTO) domain.Artist {
	return domain.Artist{
		ID:       dto.ID,
		Name:     dto.Name,
		Aliases:  dto.Aliases,
		ImageURL: dto.ImageURL,
	}
}

func mapDNPEntry(dto dnpEntryDTO) domain.DNPEntry {
	return domain.DNPEntry{
		Artist:  mapArtist(dto.Artist),
		Tags:    dto.Tags,
		Note:    dto.Note,
		AddedAt: dto.AddedAt,
	}
}

func mapConnection(dto connectionDTO) domain.Connection {
	return domain.Connection{
		Provider:    domain.Provider(dto.Provider),
		AccountName: dto.AccountName,
		ConnectedAt: dto.ConnectedAt,
		LastSyncAt:  dto.LastSyncAt,
	}
}
