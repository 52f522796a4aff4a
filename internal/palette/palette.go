// Package palette models the desktop's command palette and right-click
// context menu. Neither touches windows directly; the shell executes the
// routes and actions they return.
package palette

import (
	"strings"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/sahilm/fuzzy"
)

// Item is a single selectable entry in the palette.
type Item struct {
	Label   string `json:"label"`             // App title
	Route   string `json:"route"`             // Route opened on selection
	Icon    string `json:"icon"`              // Icon key
	Matched []int  `json:"matched,omitempty"` // Label byte offsets hit by the query
}

// Palette holds the open flag and the current query.
type Palette struct {
	open  bool
	query string
	fuzzy bool
}

// New creates a closed palette. With fuzzyMatching off, queries are plain
// case-insensitive substring matches against app titles.
func New(fuzzyMatching bool) *Palette {
	return &Palette{fuzzy: fuzzyMatching}
}

// SetFuzzy switches the matching mode.
func (p *Palette) SetFuzzy(enabled bool) {
	p.fuzzy = enabled
}

// Open shows the palette.
func (p *Palette) Open() {
	p.open = true
}

// Close hides the palette. The query is kept for the next open.
func (p *Palette) Close() {
	p.open = false
}

// Toggle flips the open flag and reports the new state.
func (p *Palette) Toggle() bool {
	p.open = !p.open
	return p.open
}

// IsOpen reports whether the palette is shown.
func (p *Palette) IsOpen() bool {
	return p.open
}

// SetQuery replaces the search text.
func (p *Palette) SetQuery(q string) {
	p.query = q
}

// Query returns the search text.
func (p *Palette) Query() string {
	return p.query
}

// Results filters apps by the current query.
func (p *Palette) Results(apps []catalog.App) []Item {
	return Search(apps, p.query, p.fuzzy)
}

// Search filters apps by title. An empty query returns every app in catalog
// order. Fuzzy results are ranked best match first.
func Search(apps []catalog.App, query string, fuzzyMatching bool) []Item {
	query = strings.TrimSpace(query)
	if query == "" {
		items := make([]Item, 0, len(apps))
		for _, app := range apps {
			items = append(items, itemFor(app, nil))
		}
		return items
	}

	if !fuzzyMatching {
		needle := strings.ToLower(query)
		var items []Item
		for _, app := range apps {
			if idx := strings.Index(strings.ToLower(app.Title), needle); idx >= 0 {
				matched := make([]int, len(needle))
				for i := range matched {
					matched[i] = idx + i
				}
				items = append(items, itemFor(app, matched))
			}
		}
		return items
	}

	matches := fuzzy.FindFrom(query, titles(apps))
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, itemFor(apps[m.Index], m.MatchedIndexes))
	}
	return items
}

func itemFor(app catalog.App, matched []int) Item {
	return Item{
		Label:   app.Title,
		Route:   app.Route,
		Icon:    app.Icon,
		Matched: matched,
	}
}

// titles adapts a catalog slice to fuzzy.Source.
type titles []catalog.App

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }
