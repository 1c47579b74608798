package tui

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/bootstrap"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/oauth"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/router"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/search"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/session"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/tui/components"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/tui/styles"
)

// Deps carries the wired services the model needs.
type Deps struct {
	Coordinator *bootstrap.Coordinator
	Sessions    *session.Store
	Resolver    *router.Resolver
	Nav         *location.ProcessSource
	ListAPI     domain.ListAPI
	Cache       domain.Cache
	SearchSvc   *search.Service
	Listener    *oauth.Listener
	APIBase     string

	// SaveSession persists the session token after login/register;
	// ClearSession removes it on logout.
	SaveSession  func() error
	ClearSession func() error
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps Deps

	// Mirrors of the three state slices driving view selection
	boot  bootstrap.State
	route router.Route
	auth  session.AuthState
	sel   Selection

	updates *stateUpdates

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	spin          spinner.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int // 0 = email, 1 = password
	registerMode  bool
	loginErr      string
	list          components.ArtistList
	filtering     bool

	// Data
	entries          []domain.DNPEntry
	entriesFromCache bool
	connections      []domain.Connection
	dataLoaded       bool
	authorizeURL     string
	exchanging       bool

	// Status bar
	statusMsg   string
	statusIsErr bool
}

// NewModel creates the application model and subscribes it to the three
// state containers.
func NewModel(deps Deps) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 10}
	spin.Style = styles.AccentStyle

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120

	m := Model{
		deps:          deps,
		updates:       newStateUpdates(),
		spin:          spin,
		emailInput:    email,
		passwordInput: password,
		list:          components.NewArtistList(),
		boot:          deps.Coordinator.State(),
		route:         deps.Resolver.Current(),
		auth:          deps.Sessions.State(),
	}
	m.sel = SelectView(m.boot, m.route, m.auth)

	updates := m.updates
	deps.Coordinator.Subscribe(func(s bootstrap.State) {
		updates.push(BootstrapChangedMsg{State: s})
	})
	deps.Sessions.Subscribe(func(s session.AuthState) {
		updates.push(AuthChangedMsg{State: s})
	})
	deps.Resolver.Subscribe(func(r router.Route) {
		updates.push(RouteChangedMsg{Route: r})
	})

	return m
}

// Init starts the bootstrap sequence and the update pump
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		StartBootstrapCmd(m.deps.Coordinator),
		m.updates.wait(),
		m.spin.Tick,
		textinput.Blink,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width-4, msg.Height-14)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case BootstrapChangedMsg:
		m.boot = msg.State
		return m.reselect()

	case AuthChangedMsg:
		m.auth = msg.State
		if msg.State.IsAuthenticated() && m.deps.Cache != nil {
			m.deps.Cache.SetProfile(msg.State.User)
		}
		return m.reselect()

	case RouteChangedMsg:
		m.route = msg.Route
		return m.reselect()

	case BootstrapSettledMsg:
		// State changes arrived through the subscription; nothing to do
		return m, nil

	case LoginResultMsg:
		if msg.Err != nil {
			m.loginErr = msg.Err.Error()
			return m, nil
		}
		m.loginErr = ""
		m.passwordInput.SetValue("")
		m.deps.Nav.Navigate("/home")
		return m, nil

	case LogoutDoneMsg:
		m.entries = nil
		m.connections = nil
		m.dataLoaded = false
		m.deps.Nav.Navigate("/login")
		return m, nil

	case DNPLoadedMsg:
		m.entries = msg.Entries
		m.entriesFromCache = msg.FromCache
		m.list.SetEntries(msg.Entries)
		if m.deps.SearchSvc != nil {
			artists := make([]domain.Artist, len(msg.Entries))
			for i, e := range msg.Entries {
				artists[i] = e.Artist
			}
			m.deps.SearchSvc.IndexArtists(artists)
		}
		if msg.FromCache {
			m.statusMsg = "Offline: showing cached list"
			m.statusIsErr = false
			return m, ClearStatusCmd(5 * time.Second)
		}
		return m, nil

	case ConnectionsLoadedMsg:
		m.connections = msg.Connections
		return m, nil

	case ArtistResultsMsg:
		if len(msg.Artists) == 0 {
			m.statusMsg = fmt.Sprintf("No catalog matches for %q", msg.Query)
		} else {
			m.statusMsg = fmt.Sprintf("%d catalog matches for %q, best: %s", len(msg.Artists), msg.Query, msg.Artists[0].Name)
		}
		m.statusIsErr = false
		return m, ClearStatusCmd(5 * time.Second)

	case ConnectStartedMsg:
		m.authorizeURL = msg.URL
		return m, nil

	case ConnectCompletedMsg:
		m.exchanging = false
		if msg.Err != nil {
			// Route to the oauth-error view through the location source
			m.deps.Nav.Set(location.Location{
				Path:  "/sync",
				Query: url.Values{"error": {"exchange_failed"}, "error_description": {msg.Err.Error()}},
			})
			return m, nil
		}
		m.authorizeURL = ""
		m.deps.Nav.Navigate("/sync")
		return m, LoadConnectionsCmd(m.deps.ListAPI)

	case ErrMsg:
		m.statusMsg = msg.Error()
		m.statusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.statusMsg = msg.Message
		m.statusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.statusMsg = ""
		m.statusIsErr = false
		return m, nil
	}

	return m, nil
}

// reselect re-evaluates the view selection and triggers side effects tied to
// entering a screen. The selection itself stays pure.
func (m Model) reselect() (tea.Model, tea.Cmd) {
	prev := m.sel
	m.sel = SelectView(m.boot, m.route, m.auth)

	cmds := []tea.Cmd{m.updates.wait()}

	// First entry into the authenticated shell loads the user's data
	if m.auth.IsAuthenticated() && !m.dataLoaded {
		m.dataLoaded = true
		cmds = append(cmds,
			LoadDNPCmd(m.deps.ListAPI, m.deps.Cache),
			LoadConnectionsCmd(m.deps.ListAPI),
		)
	}

	// Entering the callback view finishes the provider link
	if m.sel.Screen == ScreenOAuthCallback && prev.Screen != ScreenOAuthCallback && !m.exchanging {
		code := m.route.Param("code")
		if code == "" {
			code = currentQueryParam(m.deps.Nav, "code")
		}
		if code != "" {
			m.exchanging = true
			cmds = append(cmds, CompleteConnectCmd(m.deps.ListAPI, domain.Provider(m.sel.Provider), code))
		}
	}

	return m, tea.Batch(cmds...)
}

// currentQueryParam reads a query parameter off the current location; the
// resolver only lifts route-defining parameters into Route.Params.
func currentQueryParam(nav *location.ProcessSource, key string) string {
	if nav == nil {
		return ""
	}
	return nav.Current().Query.Get(key)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.sel.Screen {
	case ScreenLoading:
		if key == "q" {
			return m, tea.Quit
		}
		return m, nil

	case ScreenConnectionError:
		switch key {
		case "r":
			return m, RetryBootstrapCmd(m.deps.Coordinator)
		case "q":
			return m, tea.Quit
		}
		return m, nil

	case ScreenOAuthError:
		switch key {
		case "enter":
			// Full location reset back to the start route
			m.deps.Nav.Navigate("/")
			return m, nil
		case "q":
			return m, tea.Quit
		}
		return m, nil

	case ScreenLogin:
		return m.handleLoginKey(msg)

	case ScreenArtistProfile:
		switch key {
		case "esc", "backspace":
			m.deps.Nav.Navigate("/home")
			return m, nil
		case "q":
			return m, tea.Quit
		}
		return m, nil

	case ScreenOAuthCallback:
		if key == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	// Authenticated shell screens
	return m.handleShellKey(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			m.passwordInput.Focus()
		} else {
			m.loginFocus = 0
			m.passwordInput.Blur()
			m.emailInput.Focus()
		}
		return m, textinput.Blink

	case "ctrl+r":
		m.registerMode = !m.registerMode
		m.loginErr = ""
		return m, nil

	case "enter":
		creds := domain.Credentials{
			Email:    m.emailInput.Value(),
			Password: m.passwordInput.Value(),
		}
		if creds.Email == "" || creds.Password == "" {
			m.loginErr = "email and password are required"
			return m, nil
		}
		m.loginErr = ""
		if m.registerMode {
			return m, RegisterCmd(m.deps.Sessions, creds, m.deps.SaveSession)
		}
		return m, LoginCmd(m.deps.Sessions, creds, m.deps.SaveSession)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Filter entry mode captures everything except esc/enter
	if m.filtering {
		switch key {
		case "esc":
			m.filtering = false
			m.list.SetFilter("")
			return m, nil
		case "enter":
			m.filtering = false
			// Submitting the filter also checks the wider catalog
			if q := m.list.Filter(); q != "" {
				return m, SearchArtistsCmd(m.deps.SearchSvc, q)
			}
			return m, nil
		case "backspace":
			f := m.list.Filter()
			if f != "" {
				m.list.SetFilter(f[:len(f)-1])
			}
			return m, nil
		default:
			if len(msg.Runes) > 0 {
				m.list.SetFilter(m.list.Filter() + string(msg.Runes))
			}
			return m, nil
		}
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "1":
		m.deps.Nav.Navigate("/home")
		return m, nil
	case "2":
		m.deps.Nav.Navigate("/sync")
		return m, nil
	case "3":
		m.deps.Nav.Navigate("/analytics")
		return m, nil
	case "4":
		m.deps.Nav.Navigate("/graph")
		return m, nil
	case "5":
		m.deps.Nav.Navigate("/settings")
		return m, nil
	}

	switch m.sel.Screen {
	case ScreenSync:
		switch key {
		case "/":
			m.filtering = true
			return m, nil
		case "up", "k":
			m.list.MoveUp()
			return m, nil
		case "down", "j":
			m.list.MoveDown()
			return m, nil
		case "enter":
			if entry := m.list.Selected(); entry != nil {
				m.deps.Nav.Navigate("/artists/" + entry.Artist.ID)
			}
			return m, nil
		case "c":
			return m, m.startConnect(domain.ProviderSpotify)
		case "R":
			return m, tea.Batch(
				LoadDNPCmd(m.deps.ListAPI, m.deps.Cache),
				LoadConnectionsCmd(m.deps.ListAPI),
			)
		}

	case ScreenSettings:
		if key == "x" {
			return m, LogoutCmd(m.deps.Sessions, m.deps.Cache, m.deps.ClearSession)
		}
	}

	return m, nil
}

// startConnect begins a provider OAuth flow through the listener
func (m Model) startConnect(provider domain.Provider) tea.Cmd {
	listener := m.deps.Listener
	apiBase := m.deps.APIBase
	return func() tea.Msg {
		if listener == nil {
			return ErrMsg{Err: fmt.Errorf("oauth listener not running"), Context: "connecting " + string(provider)}
		}
		state := listener.Begin(provider)
		return ConnectStartedMsg{
			Provider: provider,
			URL:      listener.AuthorizeURL(apiBase, provider, state),
		}
	}
}

// View renders the selected screen
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	switch m.sel.Screen {
	case ScreenLoading:
		return renderLoading(m.spin.View(), m.width, m.height)

	case ScreenConnectionError:
		diag := ""
		if err := m.deps.Coordinator.LastError(); err != nil {
			diag = err.Error()
		}
		lastAccount := ""
		if m.deps.Cache != nil {
			if profile, ok := m.deps.Cache.GetProfile(); ok {
				lastAccount = profile.Email
			}
		}
		return renderConnectionError(diag, lastAccount, m.width, m.height)

	case ScreenOAuthCallback:
		return renderOAuthCallback(m.sel.Provider, m.spin.View(), m.width, m.height)

	case ScreenOAuthError:
		return renderOAuthError(m.sel.OAuthErr, m.route.Param("error_description"), m.width, m.height)

	case ScreenLogin:
		return renderLogin(m.emailInput.View(), m.passwordInput.View(), m.registerMode, m.loginErr, m.width, m.height)

	case ScreenArtistProfile:
		return renderArtistProfile(m.sel.ArtistID, m.findEntry(m.sel.ArtistID), m.width, m.height)
	}

	// Shell screens
	var content string
	switch m.sel.Screen {
	case ScreenSettings:
		content = renderSettings(m.auth.User)
	case ScreenSync:
		content = renderSync(m.connections, m.list.View(), m.authorizeURL)
	case ScreenAnalytics:
		content = renderAnalytics(m.entries)
	case ScreenGraph:
		content = renderGraph(m.entries)
	default:
		content = renderHome(m.auth.User, m.entries, m.connections, m.entriesFromCache)
	}

	return renderShell(m.sel.Screen, m.auth.User, content, m.statusMsg, m.statusIsErr, m.width, m.height)
}

func (m Model) findEntry(artistID string) *domain.DNPEntry {
	for i := range m.entries {
		if m.entries[i].Artist.ID == artistID {
			return &m.entries[i]
		}
	}
	return nil
}
