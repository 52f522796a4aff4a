// Package content renders the body of a window from its route. The window
// manager treats a pane as opaque; unknown routes render nothing.
package content

import "github.com/1broseidon/webdesk/internal/catalog"

// Kind tells a client which widget draws the pane.
type Kind string

const (
	KindDocument Kind = "document"
	KindList     Kind = "list"
	KindTerminal Kind = "terminal"
	KindPlayer   Kind = "player"
	KindForm     Kind = "form"
)

// Theme is the color scheme a pane is rendered for.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Section is a heading followed by lines of text.
type Section struct {
	Heading string   `json:"heading,omitempty"`
	Lines   []string `json:"lines"`
}

// Pane is the renderable body of one window.
type Pane struct {
	Route    string              `json:"route"`
	Title    string              `json:"title"`
	Kind     Kind                `json:"kind"`
	Theme    Theme               `json:"theme"`
	Chrome   catalog.ChromeStyle `json:"chrome_style"`
	Sections []Section           `json:"sections"`
}

// Renderer maps a route to its pane.
type Renderer interface {
	Render(route string, dark bool) (Pane, bool)
}

// Static serves a fixed set of panes.
type Static struct {
	panes map[string]Pane
}

// NewStatic builds a renderer from panes keyed by route. Titles and chrome
// styles missing from a pane are filled from the catalog.
func NewStatic(apps []catalog.App, panes map[string]Pane) *Static {
	s := &Static{panes: make(map[string]Pane, len(panes))}
	byRoute := make(map[string]catalog.App, len(apps))
	for _, app := range apps {
		byRoute[app.Route] = app
	}
	for route, p := range panes {
		p.Route = route
		if app, ok := byRoute[route]; ok {
			if p.Title == "" {
				p.Title = app.Title
			}
			if p.Chrome == "" {
				p.Chrome = app.ChromeStyle
			}
		}
		if p.Kind == "" {
			p.Kind = KindDocument
		}
		s.panes[route] = p
	}
	return s
}

// Render returns the pane for route in the requested theme.
func (s *Static) Render(route string, dark bool) (Pane, bool) {
	p, ok := s.panes[route]
	if !ok {
		return Pane{}, false
	}
	p.Theme = ThemeLight
	if dark {
		p.Theme = ThemeDark
	}
	p.Sections = append([]Section(nil), p.Sections...)
	return p, true
}
