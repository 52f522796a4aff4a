package catalog

import (
	"fmt"
	"strings"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/nav"
)

// ChromeStyle selects the visual frame a window is drawn with.
type ChromeStyle string

const (
	ChromePaper   ChromeStyle = "paper"
	ChromeWood    ChromeStyle = "wood"
	ChromeLantern ChromeStyle = "lantern"
	ChromeSlate   ChromeStyle = "slate"
)

// Valid reports whether s is one of the known chrome styles.
func (s ChromeStyle) Valid() bool {
	switch s {
	case ChromePaper, ChromeWood, ChromeLantern, ChromeSlate:
		return true
	default:
		return false
	}
}

// App describes one launchable application.
type App struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Route       string      `json:"route" yaml:"route"`
	Icon        string      `json:"icon" yaml:"icon"`
	ChromeStyle ChromeStyle `json:"chrome_style" yaml:"chrome_style"`
	DefaultSize *geom.Size  `json:"default_size,omitempty" yaml:"default_size,omitempty"`
}

// Equal reports whether a and b describe the same app.
func (a App) Equal(b App) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Route != b.Route || a.Icon != b.Icon || a.ChromeStyle != b.ChromeStyle {
		return false
	}
	if a.DefaultSize == nil || b.DefaultSize == nil {
		return a.DefaultSize == b.DefaultSize
	}
	return *a.DefaultSize == *b.DefaultSize
}

// Catalog is an immutable, ordered list of applications indexed by route.
type Catalog struct {
	apps    []App
	byRoute map[string]int
}

// New validates apps and builds a catalog. Order is preserved.
func New(apps []App) (*Catalog, error) {
	c := &Catalog{
		apps:    make([]App, 0, len(apps)),
		byRoute: make(map[string]int, len(apps)),
	}
	ids := make(map[string]struct{}, len(apps))

	for i, app := range apps {
		if strings.TrimSpace(app.ID) == "" {
			return nil, fmt.Errorf("apps[%d]: id is required", i)
		}
		if !strings.HasPrefix(app.Route, "/") || app.Route == "/" {
			return nil, fmt.Errorf("apps[%d] (%s): route must start with '/' and not be the home route, got %q", i, app.ID, app.Route)
		}
		if clean := nav.Clean(app.Route); clean != app.Route {
			return nil, fmt.Errorf("apps[%d] (%s): route %q is not canonical, use %q", i, app.ID, app.Route, clean)
		}
		if _, dup := ids[app.ID]; dup {
			return nil, fmt.Errorf("apps[%d]: duplicate id %q", i, app.ID)
		}
		if _, dup := c.byRoute[app.Route]; dup {
			return nil, fmt.Errorf("apps[%d] (%s): duplicate route %q", i, app.ID, app.Route)
		}
		if app.ChromeStyle == "" {
			app.ChromeStyle = ChromePaper
		}
		if !app.ChromeStyle.Valid() {
			return nil, fmt.Errorf("apps[%d] (%s): unknown chrome_style %q", i, app.ID, app.ChromeStyle)
		}
		if app.DefaultSize != nil && (app.DefaultSize.W <= 0 || app.DefaultSize.H <= 0) {
			return nil, fmt.Errorf("apps[%d] (%s): default_size must be positive", i, app.ID)
		}
		if app.Title == "" {
			app.Title = app.ID
		}

		ids[app.ID] = struct{}{}
		c.byRoute[app.Route] = len(c.apps)
		c.apps = append(c.apps, app)
	}

	return c, nil
}

// MustNew is New for static input known to be valid.
func MustNew(apps []App) *Catalog {
	c, err := New(apps)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds the application registered for route.
func (c *Catalog) Lookup(route string) (App, bool) {
	idx, ok := c.byRoute[route]
	if !ok {
		return App{}, false
	}
	return c.apps[idx], true
}

// Apps returns a copy of the catalog in declaration order.
func (c *Catalog) Apps() []App {
	out := make([]App, len(c.apps))
	copy(out, c.apps)
	return out
}

// Len returns the number of applications.
func (c *Catalog) Len() int {
	return len(c.apps)
}
