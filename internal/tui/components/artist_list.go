package components

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/tui/styles"
)

// ArtistList is a scrollable, fuzzy-filterable list of DNP entries.
type ArtistList struct {
	entries []domain.DNPEntry
	names   []string // Pre-computed names, parallel to entries

	filter   string
	filtered []int // Indexes into entries; nil means no filter applied

	cursor int
	offset int

	width  int
	height int
}

// NewArtistList creates an empty list.
func NewArtistList() ArtistList {
	return ArtistList{}
}

// SetSize updates the render dimensions.
func (l *ArtistList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.clampCursor()
}

// SetEntries replaces the list contents and re-applies any active filter.
func (l *ArtistList) SetEntries(entries []domain.DNPEntry) {
	l.entries = entries
	l.names = make([]string, len(entries))
	for i, e := range entries {
		l.names[i] = e.Artist.Name
	}
	l.applyFilter()
}

// SetFilter applies a fuzzy filter over artist names.
func (l *ArtistList) SetFilter(query string) {
	l.filter = query
	l.applyFilter()
}

// Filter returns the active filter query.
func (l *ArtistList) Filter() string {
	return l.filter
}

func (l *ArtistList) applyFilter() {
	if l.filter == "" {
		l.filtered = nil
		l.clampCursor()
		return
	}

	matches := fuzzy.Find(l.filter, l.names)
	l.filtered = make([]int, len(matches))
	for i, m := range matches {
		l.filtered[i] = m.Index
	}
	l.cursor = 0
	l.offset = 0
}

// Len returns the number of visible entries.
func (l *ArtistList) Len() int {
	if l.filtered != nil {
		return len(l.filtered)
	}
	return len(l.entries)
}

// Selected returns the entry under the cursor, or nil when the list is empty.
func (l *ArtistList) Selected() *domain.DNPEntry {
	n := l.Len()
	if n == 0 || l.cursor >= n {
		return nil
	}
	idx := l.cursor
	if l.filtered != nil {
		idx = l.filtered[l.cursor]
	}
	return &l.entries[idx]
}

// MoveUp moves the cursor up one row.
func (l *ArtistList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.scrollIntoView()
}

// MoveDown moves the cursor down one row.
func (l *ArtistList) MoveDown() {
	if l.cursor < l.Len()-1 {
		l.cursor++
	}
	l.scrollIntoView()
}

func (l *ArtistList) clampCursor() {
	if n := l.Len(); l.cursor >= n && n > 0 {
		l.cursor = n - 1
	}
	if l.Len() == 0 {
		l.cursor = 0
		l.offset = 0
	}
	l.scrollIntoView()
}

func (l *ArtistList) scrollIntoView() {
	rows := l.visibleRows()
	if rows <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

func (l *ArtistList) visibleRows() int {
	rows := l.height
	if l.filter != "" {
		rows-- // Filter line
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the list.
func (l *ArtistList) View() string {
	var b strings.Builder

	if l.filter != "" {
		b.WriteString(styles.AccentStyle.Render("/" + l.filter))
		b.WriteString("\n")
	}

	n := l.Len()
	if n == 0 {
		if l.filter != "" {
			b.WriteString(styles.DimStyle.Render("No artists match the filter"))
		} else {
			b.WriteString(styles.DimStyle.Render("DNP list is empty"))
		}
		return b.String()
	}

	rows := l.visibleRows()
	end := l.offset + rows
	if end > n {
		end = n
	}

	for i := l.offset; i < end; i++ {
		idx := i
		if l.filtered != nil {
			idx = l.filtered[i]
		}
		entry := l.entries[idx]

		style := styles.NormalItemStyle
		prefix := "  "
		if i == l.cursor {
			style = styles.SelectedItemStyle
			prefix = styles.AccentStyle.Render("> ")
		}

		name := styles.Truncate(entry.Artist.Name, l.width-20)
		line := prefix + style.Render(name)
		if len(entry.Tags) > 0 {
			line += " " + styles.DimBadgeStyle.Render(fmt.Sprintf("[%s]", strings.Join(entry.Tags, ",")))
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
