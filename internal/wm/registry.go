// Package wm owns the window lifecycle: open, close, focus, minimize,
// maximize/restore, move and resize, plus the z-order and focus policy.
//
// Every operation on an unknown route or a stale window id is a no-op
// reported through a false result. A Registry is not safe for concurrent use;
// callers serialize access (the desktop shell holds a single lock).
package wm

import (
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/google/uuid"
)

// Catalog resolves a route to an application descriptor.
type Catalog interface {
	Lookup(route string) (catalog.App, bool)
}

// Navigator is the external location collaborator.
type Navigator interface {
	Location() string
	GoHome()
}

// Viewport reports the current host display size. It is read on every
// maximize, never cached.
type Viewport interface {
	Size() geom.Size
}

// Cascade staggers new windows diagonally.
type Cascade struct {
	Origin geom.Point
	Step   int
}

// Options configures a Registry. Zero fields take defaults.
type Options struct {
	Catalog     Catalog
	Navigator   Navigator
	Viewport    Viewport
	Cascade     *Cascade
	DefaultSize geom.Size
	// ZBase is the initial z-counter; the first window gets ZBase+1.
	ZBase int
	NewID func(app catalog.App) string
	Now   func() time.Time
}

const (
	DefaultZBase      = 10
	DefaultCascadeXY  = 100
	DefaultCascadeGap = 30
)

// DefaultWindowSize is used when an application has no preferred size.
var DefaultWindowSize = geom.Size{W: 600, H: 400}

// Registry is the authoritative store of windows.
type Registry struct {
	catalog     Catalog
	nav         Navigator
	viewport    Viewport
	cascade     Cascade
	defaultSize geom.Size
	newID       func(app catalog.App) string
	now         func() time.Time

	windows   []*Window
	focusedID string
	zCounter  int
	issued    map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		catalog:     opts.Catalog,
		nav:         opts.Navigator,
		viewport:    opts.Viewport,
		defaultSize: opts.DefaultSize,
		newID:       opts.NewID,
		now:         opts.Now,
		zCounter:    opts.ZBase,
		issued:      make(map[string]struct{}),
	}
	if r.catalog == nil {
		r.catalog = catalog.Builtin()
	}
	if opts.Cascade != nil {
		r.cascade = *opts.Cascade
	} else {
		r.cascade = Cascade{Origin: geom.Point{X: DefaultCascadeXY, Y: DefaultCascadeXY}, Step: DefaultCascadeGap}
	}
	if r.defaultSize.W <= 0 || r.defaultSize.H <= 0 {
		r.defaultSize = DefaultWindowSize
	}
	if r.newID == nil {
		r.newID = RandomID
	}
	if r.now == nil {
		r.now = time.Now
	}
	if opts.ZBase == 0 {
		r.zCounter = DefaultZBase
	}
	return r
}

// RandomID builds "<app id>-<random suffix>".
func RandomID(app catalog.App) string {
	return app.ID + "-" + uuid.NewString()[:8]
}

// SetViewport replaces the viewport source.
func (r *Registry) SetViewport(v Viewport) {
	r.viewport = v
}

// Open opens the application registered for route, or focuses its window if
// one is already open. It returns the window id and whether a new window was
// created. An unknown route yields ("", false).
func (r *Registry) Open(route string) (string, bool) {
	app, ok := r.catalog.Lookup(route)
	if !ok {
		return "", false
	}

	if existing := r.byRoute(route); existing != nil {
		r.Focus(existing.ID)
		return existing.ID, false
	}

	size := r.defaultSize
	if app.DefaultSize != nil {
		size = *app.DefaultSize
	}
	offset := len(r.windows) * r.cascade.Step

	r.zCounter++
	w := &Window{
		ID:     r.uniqueID(app),
		Route:  app.Route,
		Title:  app.Title,
		Icon:   app.Icon,
		Chrome: app.ChromeStyle,
		Geometry: Geometry{Frame: Frame{
			Pos:  geom.Point{X: r.cascade.Origin.X + offset, Y: r.cascade.Origin.Y + offset},
			Size: size,
		}},
		Z:             r.zCounter,
		LastFocusedAt: r.now(),
	}
	r.windows = append(r.windows, w)
	r.focusedID = w.ID
	return w.ID, true
}

// uniqueID never hands out the same id twice, even after a close.
func (r *Registry) uniqueID(app catalog.App) string {
	for {
		id := r.newID(app)
		if _, used := r.issued[id]; id != "" && !used {
			r.issued[id] = struct{}{}
			return id
		}
	}
}

// Close removes a window. Closing the window whose route is the current
// location sends the navigator home.
func (r *Registry) Close(id string) bool {
	idx := r.index(id)
	if idx < 0 {
		return false
	}
	w := r.windows[idx]
	r.windows = append(r.windows[:idx], r.windows[idx+1:]...)

	if r.focusedID == id {
		r.focusedID = ""
	}
	if r.nav != nil && r.nav.Location() == w.Route {
		r.nav.GoHome()
	}
	return true
}

// Focus raises a window to the top of the stack and un-minimizes it. The
// z-counter advances even when the window is already focused.
func (r *Registry) Focus(id string) bool {
	w := r.Get(id)
	if w == nil {
		return false
	}
	r.zCounter++
	w.Z = r.zCounter
	w.Minimized = false
	w.LastFocusedAt = r.now()
	r.focusedID = id
	return true
}

// Minimize hides a window. Focus is not passed to another window.
func (r *Registry) Minimize(id string) bool {
	w := r.Get(id)
	if w == nil {
		return false
	}
	w.Minimized = true
	if r.focusedID == id {
		r.focusedID = ""
	}
	return true
}

// ToggleMaximize maximizes a normal window to the full viewport or restores a
// maximized one to its saved frame.
func (r *Registry) ToggleMaximize(id string) bool {
	w := r.Get(id)
	if w == nil {
		return false
	}
	if w.Geometry.Maximized() {
		w.Geometry.restore()
		return true
	}
	w.Geometry.maximize(Frame{Pos: geom.Point{}, Size: r.viewportSize()})
	return true
}

// Move sets a window's position and drops it out of the maximized state.
func (r *Registry) Move(id string, pos geom.Point) bool {
	w := r.Get(id)
	if w == nil {
		return false
	}
	w.Geometry.Pos = pos
	w.Geometry.unmaximize()
	return true
}

// Resize sets a window's size and drops it out of the maximized state.
func (r *Registry) Resize(id string, size geom.Size) bool {
	w := r.Get(id)
	if w == nil {
		return false
	}
	w.Geometry.Size = size
	w.Geometry.unmaximize()
	return true
}

// Get returns the live window for id, or nil.
func (r *Registry) Get(id string) *Window {
	if idx := r.index(id); idx >= 0 {
		return r.windows[idx]
	}
	return nil
}

// Lookup returns a copy of the window for id.
func (r *Registry) Lookup(id string) (View, bool) {
	w := r.Get(id)
	if w == nil {
		return View{}, false
	}
	return w.view(r.focusedID == id), true
}

// FocusedID returns the focused window id, or "" when nothing is focused.
func (r *Registry) FocusedID() string {
	return r.focusedID
}

// Len returns the number of open windows.
func (r *Registry) Len() int {
	return len(r.windows)
}

// Views returns every window in open order.
func (r *Registry) Views() []View {
	out := make([]View, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w.view(w.ID == r.focusedID))
	}
	return out
}

// VisibleRects returns the rectangles of non-minimized windows other than
// exclude, in open order. The slice is a snapshot.
func (r *Registry) VisibleRects(exclude string) []geom.Rect {
	var out []geom.Rect
	for _, w := range r.windows {
		if w.ID == exclude || w.Minimized {
			continue
		}
		out = append(out, w.Rect())
	}
	return out
}

// ViewportSize returns the current viewport size.
func (r *Registry) ViewportSize() geom.Size {
	return r.viewportSize()
}

func (r *Registry) viewportSize() geom.Size {
	if r.viewport == nil {
		return geom.Size{}
	}
	return r.viewport.Size()
}

func (r *Registry) byRoute(route string) *Window {
	for _, w := range r.windows {
		if w.Route == route {
			return w
		}
	}
	return nil
}

func (r *Registry) index(id string) int {
	if id == "" {
		return -1
	}
	for i, w := range r.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}
