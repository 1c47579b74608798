package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/bootstrap"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/search"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/session"
)

// Command factories for async operations

// StartBootstrapCmd runs the bootstrap sequence to completion
func StartBootstrapCmd(c *bootstrap.Coordinator) tea.Cmd {
	return func() tea.Msg {
		c.Start(context.Background())
		return BootstrapSettledMsg{}
	}
}

// RetryBootstrapCmd re-runs the bootstrap sequence after a failure
func RetryBootstrapCmd(c *bootstrap.Coordinator) tea.Cmd {
	return func() tea.Msg {
		c.Retry(context.Background())
		return BootstrapSettledMsg{}
	}
}

// LoginCmd authenticates with credentials; persist is invoked on success to
// save the session token
func LoginCmd(store *session.Store, creds domain.Credentials, persist func() error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := store.Login(ctx, creds); err != nil {
			return LoginResultMsg{Err: err}
		}
		if persist != nil {
			if err := persist(); err != nil {
				return ErrMsg{Err: err, Context: "saving session"}
			}
		}
		return LoginResultMsg{}
	}
}

// RegisterCmd creates an account; persist is invoked on success
func RegisterCmd(store *session.Store, creds domain.Credentials, persist func() error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := store.Register(ctx, creds); err != nil {
			return LoginResultMsg{Err: err}
		}
		if persist != nil {
			if err := persist(); err != nil {
				return ErrMsg{Err: err, Context: "saving session"}
			}
		}
		return LoginResultMsg{}
	}
}

// LogoutCmd invalidates the session and clears local credentials and cache
func LogoutCmd(store *session.Store, cache domain.Cache, clearCreds func() error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store.Logout(ctx)
		if cache != nil {
			cache.Clear()
		}
		if clearCreds != nil {
			if err := clearCreds(); err != nil {
				return ErrMsg{Err: err, Context: "clearing credentials"}
			}
		}
		return LogoutDoneMsg{}
	}
}

// LoadDNPCmd loads the DNP list, falling back to the local cache when the
// backend is unreachable
func LoadDNPCmd(api domain.ListAPI, cache domain.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		entries, err := api.GetDNPList(ctx)
		if err != nil {
			if cache != nil {
				if cached, ok := cache.GetDNPList(); ok {
					return DNPLoadedMsg{Entries: cached, FromCache: true}
				}
			}
			return ErrMsg{Err: err, Context: "loading DNP list"}
		}

		if cache != nil {
			cache.SetDNPList(entries)
		}
		return DNPLoadedMsg{Entries: entries}
	}
}

// LoadConnectionsCmd loads the user's provider connections
func LoadConnectionsCmd(api domain.ListAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		conns, err := api.GetConnections(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading connections"}
		}
		return ConnectionsLoadedMsg{Connections: conns}
	}
}

// SearchArtistsCmd searches the catalog for the add-to-list picker
func SearchArtistsCmd(svc *search.Service, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		artists, err := svc.Search(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching artists"}
		}
		return ArtistResultsMsg{Artists: artists, Query: query}
	}
}

// CompleteConnectCmd exchanges the OAuth code carried by the callback route
func CompleteConnectCmd(api domain.ListAPI, provider domain.Provider, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := api.CompleteConnection(ctx, provider, code)
		return ConnectCompletedMsg{Provider: provider, Err: err}
	}
}

// ClearStatusCmd clears the status bar after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
