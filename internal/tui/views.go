package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/tui/styles"
)

// shellTabs is the fixed tab order of the authenticated layout
var shellTabs = []Screen{ScreenHome, ScreenSync, ScreenAnalytics, ScreenGraph, ScreenSettings}

var shellTabLabels = map[Screen]string{
	ScreenHome:      "Home",
	ScreenSync:      "Sync",
	ScreenAnalytics: "Analytics",
	ScreenGraph:     "Graph",
	ScreenSettings:  "Settings",
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderLoading is shown until bootstrap settles
func renderLoading(spinner string, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("nodrake"),
		"",
		spinner+" "+styles.SubtitleStyle.Render("Resolving session..."),
	)
	return centered(width, height, body)
}

// renderConnectionError is shown when bootstrap failed and no session is
// authenticated. It carries the retry affordance.
func renderConnectionError(diag, lastAccount string, width, height int) string {
	lines := []string{
		styles.ErrorStyle.Render("Could not reach the nodrake service"),
		"",
	}
	if diag != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(diag, width-8)), "")
	}
	if lastAccount != "" {
		lines = append(lines, styles.SubtitleStyle.Render("last signed in as "+lastAccount), "")
	}
	lines = append(lines,
		styles.SubtitleStyle.Render("press ")+styles.AccentStyle.Render("r")+styles.SubtitleStyle.Render(" to retry, ")+
			styles.AccentStyle.Render("q")+styles.SubtitleStyle.Render(" to quit"),
	)
	return centered(width, height, lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderOAuthCallback is shown while a provider connection completes
func renderOAuthCallback(provider, spinner string, width, height int) string {
	label := provider
	if label == "" {
		label = "provider"
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("Connecting "+label),
		"",
		spinner+" "+styles.SubtitleStyle.Render("Finishing account link..."),
	)
	return centered(width, height, body)
}

// renderOAuthError is shown when a provider redirect carried an error flag
func renderOAuthError(code, description string, width, height int) string {
	lines := []string{
		styles.ErrorStyle.Render("Account connection failed"),
		"",
	}
	if code != "" {
		lines = append(lines, styles.SubtitleStyle.Render(code))
	}
	if description != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(description, width-8)))
	}
	lines = append(lines, "",
		styles.SubtitleStyle.Render("press ")+styles.AccentStyle.Render("enter")+styles.SubtitleStyle.Render(" to return to start"),
	)
	return centered(width, height, lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderLogin is the unauthenticated view
func renderLogin(email, password string, registerMode bool, loginErr string, width, height int) string {
	title := "Sign in to nodrake"
	action := "sign in"
	toggle := "ctrl+r to register instead"
	if registerMode {
		title = "Create a nodrake account"
		action = "register"
		toggle = "ctrl+r to sign in instead"
	}

	lines := []string{
		styles.TitleStyle.Render(title),
		"",
		"Email:    " + email,
		"Password: " + password,
		"",
	}
	if loginErr != "" {
		lines = append(lines, styles.ErrorStyle.Render(styles.Truncate(loginErr, width-8)), "")
	}
	lines = append(lines,
		styles.SubtitleStyle.Render("enter to "+action+" · tab to switch fields · "+toggle),
	)
	return centered(width, height, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderShell wraps tab content in the common authenticated layout
func renderShell(active Screen, user *domain.UserProfile, content, status string, statusIsErr bool, width, height int) string {
	var tabs []string
	for _, tab := range shellTabs {
		if tab == active {
			tabs = append(tabs, styles.ActiveTabStyle.Render(shellTabLabels[tab]))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(shellTabLabels[tab]))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	who := ""
	if user != nil {
		name := user.DisplayName
		if name == "" {
			name = user.Email
		}
		who = styles.DimStyle.Render(name)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabBar, "  ", who)

	footer := styles.DimStyle.Render("1-5 switch tabs · q quit")
	if status != "" {
		if statusIsErr {
			footer = styles.ErrorStyle.Render(status)
		} else {
			footer = styles.SuccessStyle.Render(status)
		}
	}

	bodyHeight := height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.NewStyle().Width(width).Height(bodyHeight).Padding(0, 1).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHome is the default authenticated landing view
func renderHome(user *domain.UserProfile, entries []domain.DNPEntry, connections []domain.Connection, fromCache bool) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Dashboard"))
	b.WriteString("\n\n")
	if user != nil {
		b.WriteString(styles.SubtitleStyle.Render("Signed in as " + user.Email))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Blocked artists: %s", styles.AccentStyle.Render(fmt.Sprintf("%d", len(entries)))))
	if fromCache {
		b.WriteString(" " + styles.DimBadgeStyle.Render("(cached)"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Connected services: %s", styles.AccentStyle.Render(fmt.Sprintf("%d", len(connections)))))
	b.WriteString("\n")

	return b.String()
}

// renderSettings shows account settings
func renderSettings(user *domain.UserProfile) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")
	if user != nil {
		b.WriteString(styles.DimStyle.Render("Account: ") + user.Email + "\n")
		b.WriteString(styles.DimStyle.Render("Member since: ") + user.CreatedAt.Format("2006-01-02") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("press ") + styles.AccentStyle.Render("x") + styles.SubtitleStyle.Render(" to sign out"))

	return b.String()
}

// renderSync shows provider connections and the filterable DNP list
func renderSync(connections []domain.Connection, list string, authorizeURL string) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Library Sync"))
	b.WriteString("\n\n")

	if len(connections) == 0 {
		b.WriteString(styles.DimStyle.Render("No services connected"))
		b.WriteString("\n")
	}
	for _, conn := range connections {
		b.WriteString(styles.SuccessStyle.Render("✓ "))
		b.WriteString(string(conn.Provider))
		if conn.AccountName != "" {
			b.WriteString(styles.DimStyle.Render(" (" + conn.AccountName + ")"))
		}
		if !conn.LastSyncAt.IsZero() {
			b.WriteString(styles.DimBadgeStyle.Render(" last sync " + conn.LastSyncAt.Format("2006-01-02 15:04")))
		}
		b.WriteString("\n")
	}

	if authorizeURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render("Open in a browser to continue:"))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(authorizeURL))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("c connect spotify · / filter list"))
	b.WriteString("\n\n")
	b.WriteString(list)

	return b.String()
}

// renderAnalytics summarizes the DNP list by tag
func renderAnalytics(entries []domain.DNPEntry) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Analytics"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Total blocked artists: %d\n\n", len(entries)))

	counts := make(map[string]int)
	for _, e := range entries {
		for _, tag := range e.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		b.WriteString(styles.DimStyle.Render("No tags assigned"))
		return b.String()
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	for _, tag := range tags {
		bar := strings.Repeat("█", counts[tag])
		b.WriteString(fmt.Sprintf("%-16s %s %d\n", tag, styles.AccentStyle.Render(bar), counts[tag]))
	}

	return b.String()
}

// renderGraph shows artists grouped by shared tags
func renderGraph(entries []domain.DNPEntry) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Connection Graph"))
	b.WriteString("\n\n")

	groups := make(map[string][]string)
	for _, e := range entries {
		for _, tag := range e.Tags {
			groups[tag] = append(groups[tag], e.Artist.Name)
		}
	}
	if len(groups) == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing to graph yet"))
		return b.String()
	}

	tags := make([]string, 0, len(groups))
	for tag := range groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		b.WriteString(styles.AccentStyle.Render(tag))
		b.WriteString("\n")
		names := groups[tag]
		sort.Strings(names)
		for i, name := range names {
			connector := "├─"
			if i == len(names)-1 {
				connector = "└─"
			}
			b.WriteString(styles.DimStyle.Render(" "+connector+" ") + name + "\n")
		}
	}

	return b.String()
}

// renderArtistProfile is the full-bleed artist view, outside the shell
func renderArtistProfile(artistID string, entry *domain.DNPEntry, width, height int) string {
	var b strings.Builder

	if entry != nil {
		b.WriteString(styles.TitleStyle.Render(entry.Artist.Name))
		b.WriteString("\n\n")
		if len(entry.Artist.Aliases) > 0 {
			b.WriteString(styles.DimStyle.Render("Also known as: ") + strings.Join(entry.Artist.Aliases, ", ") + "\n")
		}
		if len(entry.Tags) > 0 {
			b.WriteString(styles.DimStyle.Render("Tags: ") + strings.Join(entry.Tags, ", ") + "\n")
		}
		if entry.Note != "" {
			b.WriteString("\n" + styles.SubtitleStyle.Render(entry.Note) + "\n")
		}
		b.WriteString("\n" + styles.DimStyle.Render("Blocked since "+entry.AddedAt.Format("2006-01-02")) + "\n")
	} else {
		b.WriteString(styles.TitleStyle.Render("Artist"))
		b.WriteString("\n\n")
		b.WriteString(styles.DimStyle.Render("id: " + artistID))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("esc to go back"))

	return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(b.String())
}
