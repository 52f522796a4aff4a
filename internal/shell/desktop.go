// Package shell is the desktop: it composes the window registry, the
// drag/resize controller, navigation, the command palette and content
// rendering, and owns the cross-cutting UI state (dark mode, toasts, the
// context menu, keyboard shortcuts, achievements).
//
// Every exported method is safe for concurrent use. Operations are applied
// one at a time under a single lock, and each state change is published to
// subscribers as a fresh snapshot.
package shell

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/webdesk/internal/bus"
	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/content"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/gesture"
	"github.com/1broseidon/webdesk/internal/nav"
	"github.com/1broseidon/webdesk/internal/palette"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/wm"
)

// DefaultViewport sizes the desktop when no viewport is supplied.
var DefaultViewport = geom.Size{W: 1280, H: 800}

const (
	DefaultStartupRoute  = "/about"
	DefaultToastDuration = 4 * time.Second
)

// Tunables are the settings that can change while the desktop is running.
type Tunables struct {
	SnapThreshold int
	MinWindow     geom.Size
	Cascade       wm.Cascade
	DefaultWindow geom.Size
	ZBase         int
	HomeRoute     string
	StartupRoute  string
	ToastDuration time.Duration
	FuzzyPalette  bool
}

// DefaultTunables returns the stock settings.
func DefaultTunables() Tunables {
	return Tunables{
		SnapThreshold: 20,
		MinWindow:     gesture.DefaultMinSize,
		Cascade:       wm.Cascade{Origin: geom.Point{X: wm.DefaultCascadeXY, Y: wm.DefaultCascadeXY}, Step: wm.DefaultCascadeGap},
		DefaultWindow: wm.DefaultWindowSize,
		ZBase:         wm.DefaultZBase,
		HomeRoute:     nav.DefaultHome,
		StartupRoute:  DefaultStartupRoute,
		ToastDuration: DefaultToastDuration,
		FuzzyPalette:  true,
	}
}

// Options configures a Desktop.
type Options struct {
	Catalog  *catalog.Catalog
	Content  content.Renderer
	Viewport platform.Viewport
	Tunables Tunables
	Logger   *slog.Logger

	// Test hooks.
	Now       func() time.Time
	NewID     func(app catalog.App) string
	AfterFunc func(d time.Duration, f func()) func() bool
}

// Desktop is the running desktop shell.
type Desktop struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	content  content.Renderer
	viewport platform.Viewport
	logger   *slog.Logger
	hub      *bus.Hub[State]

	now       func() time.Time
	newID     func(app catalog.App) string
	afterFunc func(d time.Duration, f func()) func() bool

	tun      Tunables
	reg      *wm.Registry
	gestures *gesture.Controller
	router   *nav.Router
	palette  *palette.Palette

	started   bool
	dark      bool
	toast     *Toast
	stopToast func() bool
	menu      *palette.Menu
	typed     string
	marquee   *marquee

	shiftClicks int
	sparkle     bool
	stopSparkle func() bool

	progress  progress
	lastCount int
	version   uint64
}

// New builds a desktop. It is idle until Start is called.
func New(opts Options) *Desktop {
	d := &Desktop{
		catalog:   opts.Catalog,
		content:   opts.Content,
		viewport:  opts.Viewport,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
		afterFunc: opts.AfterFunc,
		tun:       opts.Tunables,
		hub:       bus.NewHub[State](),
	}
	if d.catalog == nil {
		d.catalog = catalog.Builtin()
	}
	if d.content == nil {
		d.content = content.Builtin()
	}
	if d.viewport == nil {
		d.viewport = platform.NewFixed(DefaultViewport)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.afterFunc == nil {
		d.afterFunc = func(dur time.Duration, f func()) func() bool {
			return time.AfterFunc(dur, f).Stop
		}
	}
	if d.tun == (Tunables{}) {
		d.tun = DefaultTunables()
	}
	d.reset()
	return d
}

// reset rebuilds every piece of session state, as a page reload would.
func (d *Desktop) reset() {
	d.router = nav.NewRouter(d.tun.HomeRoute)
	cascade := d.tun.Cascade
	d.reg = wm.NewRegistry(wm.Options{
		Catalog:     d.catalog,
		Navigator:   d.router,
		Viewport:    d.viewport,
		Cascade:     &cascade,
		DefaultSize: d.tun.DefaultWindow,
		ZBase:       d.tun.ZBase,
		NewID:       d.newID,
		Now:         d.now,
	})
	d.gestures = gesture.NewController(d.reg, gesture.Options{
		Threshold: d.tun.SnapThreshold,
		MinSize:   d.tun.MinWindow,
		Logger:    d.logger,
	})
	d.palette = palette.New(d.tun.FuzzyPalette)

	d.started = false
	d.dark = false
	d.clearToast()
	d.menu = nil
	d.typed = ""
	d.clearSparkle()
	d.marquee = nil
	d.progress = progress{}
	d.lastCount = 0
}

// Start opens the startup window when the desktop is at its home route. It
// runs once per session.
func (d *Desktop) Start() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start()
	return d.commit("start")
}

func (d *Desktop) start() {
	if d.started {
		return
	}
	d.started = true
	if d.router.AtHome() && d.tun.StartupRoute != "" {
		d.reg.Open(d.tun.StartupRoute)
	}
}

// Subscribe streams snapshots after every change until ctx is done or the
// returned func is called.
func (d *Desktop) Subscribe(ctx context.Context) (<-chan State, func()) {
	return d.hub.Subscribe(ctx)
}

// Reconfigure swaps the tunables. Live windows keep their geometry; cascade,
// default size and z base apply from the next refresh.
func (d *Desktop) Reconfigure(t Tunables) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tun = t
	d.gestures.SetTunables(t.SnapThreshold, t.MinWindow)
	d.palette.SetFuzzy(t.FuzzyPalette)
	d.logger.Info("desktop reconfigured", "snap_threshold", t.SnapThreshold, "min_window", t.MinWindow, "toast", t.ToastDuration)
	d.commit("reconfigure")
}

// Snapshot returns the current state.
func (d *Desktop) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

// Apps returns the catalog.
func (d *Desktop) Apps() []catalog.App {
	return d.catalog.Apps()
}

// Render returns the content pane of a window.
func (d *Desktop) Render(id string) (content.Pane, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.reg.Lookup(id)
	if !ok {
		return content.Pane{}, false
	}
	return d.content.Render(w.Route, d.dark)
}

// Open opens or refocuses the window for route.
func (d *Desktop) Open(route string) Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, created := d.reg.Open(nav.Clean(route))
	d.commit("open")
	return Result{OK: id != "", ID: id, Created: created}
}

// Close closes a window.
func (d *Desktop) Close(id string) Result {
	return d.windowOp("close", id, d.reg.Close)
}

// Focus raises a window, restoring it if minimized.
func (d *Desktop) Focus(id string) Result {
	return d.windowOp("focus", id, d.reg.Focus)
}

// Minimize hides a window.
func (d *Desktop) Minimize(id string) Result {
	return d.windowOp("minimize", id, d.reg.Minimize)
}

// ToggleMaximize maximizes or restores a window.
func (d *Desktop) ToggleMaximize(id string) Result {
	return d.windowOp("maximize", id, d.reg.ToggleMaximize)
}

// Move places a window at pos.
func (d *Desktop) Move(id string, pos geom.Point) Result {
	return d.windowOp("move", id, func(id string) bool { return d.reg.Move(id, pos) })
}

// Resize sets a window's size.
func (d *Desktop) Resize(id string, size geom.Size) Result {
	return d.windowOp("resize", id, func(id string) bool { return d.reg.Resize(id, size) })
}

func (d *Desktop) windowOp(name, id string, op func(string) bool) Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := op(id)
	if !ok {
		d.logger.Debug("ignored operation on unknown window", "op", name, "window", id)
		return Result{ID: id}
	}
	d.commit(name)
	return Result{OK: true, ID: id}
}

// Navigate changes the location. A non-home route opens or focuses its
// window; unknown routes change the location only.
func (d *Desktop) Navigate(route string) Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	route = nav.Clean(route)
	d.router.Navigate(route)

	var res Result
	if route != d.router.Home() {
		id, created := d.reg.Open(route)
		res = Result{OK: id != "", ID: id, Created: created}
	} else {
		res = Result{OK: true}
	}
	d.commit("navigate")
	return res
}

// ToggleDarkMode flips the global dark mode flag and returns the new value.
func (d *Desktop) ToggleDarkMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dark = !d.dark
	d.commit("dark-mode")
	return d.dark
}

// SetViewport records the client's viewport size. It fails when the
// viewport is owned by the display server.
func (d *Desktop) SetViewport(size geom.Size) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.viewport.(platform.Resizable)
	if !ok || !r.SetSize(size) {
		return false
	}
	d.commit("viewport")
	return true
}

// ViewportChanged publishes a snapshot after the viewport size changed
// outside the desktop, e.g. an X11 monitor reconfiguration.
func (d *Desktop) ViewportChanged() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commit("viewport")
}

// ShowToast replaces the current toast.
func (d *Desktop) ShowToast(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showToast(message)
	d.commit("toast")
}

// Refresh discards every window and UI flag and starts over.
func (d *Desktop) Refresh() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.Info("desktop refreshed", "windows", d.reg.Len())
	d.reset()
	d.start()
	return d.commit("refresh")
}

func (d *Desktop) showToast(message string) {
	d.clearToast()
	t := &Toast{Message: message, ExpiresAt: d.now().Add(d.tun.ToastDuration)}
	d.toast = t
	d.stopToast = d.afterFunc(d.tun.ToastDuration, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.toast == t {
			d.toast = nil
			d.commit("toast-expired")
		}
	})
}

func (d *Desktop) clearToast() {
	if d.stopToast != nil {
		d.stopToast()
		d.stopToast = nil
	}
	d.toast = nil
}

// commit runs the post-change checks, then publishes and returns a snapshot.
// Callers hold d.mu.
func (d *Desktop) commit(reason string) State {
	d.checkAchievements()
	d.version++
	s := d.snapshot()
	if err := d.hub.Broadcast(context.Background(), s); err != nil {
		d.logger.Warn("failed to publish desktop state", "reason", reason, "error", err)
	}
	return s
}

func (d *Desktop) snapshot() State {
	views := d.reg.Views()
	windows := make([]WindowView, 0, len(views))
	for _, v := range views {
		windows = append(windows, WindowView{View: v, Resizable: !v.Maximized})
	}

	stack := make([]WindowView, 0, len(windows))
	for _, w := range windows {
		if !w.Minimized {
			stack = append(stack, w)
		}
	}
	sort.Slice(stack, func(i, j int) bool { return stack[i].ZIndex < stack[j].ZIndex })
	ids := make([]string, 0, len(stack))
	for _, w := range stack {
		ids = append(ids, w.ID)
	}

	sess := d.gestures.Session()
	g := GestureView{Phase: sess.Phase.String(), WindowID: sess.WindowID, SnapPreview: sess.PendingSnap}
	if sess.PendingSnap != nil {
		g.SnapEdge = sess.SnapEdge.String()
	}

	p := PaletteView{Open: d.palette.IsOpen(), Query: d.palette.Query()}
	if p.Open {
		p.Results = d.palette.Results(d.catalog.Apps())
	}

	s := State{
		Version:     d.version,
		Location:    d.router.Location(),
		Viewport:    d.reg.ViewportSize(),
		Windows:     windows,
		Stack:       ids,
		FocusedID:   d.reg.FocusedID(),
		DarkMode:    d.dark,
		Sparkle:     d.sparkle,
		Transitions: d.gestures.Transitions(),
		Gesture:     g,
		Palette:     p,
		Unlocked:    d.progress.unlocked(),
	}
	if d.menu != nil {
		m := *d.menu
		s.ContextMenu = &m
	}
	if d.toast != nil && d.now().Before(d.toast.ExpiresAt) {
		t := *d.toast
		s.Toast = &t
	}
	if d.marquee != nil {
		if r, ok := d.marquee.visible(); ok {
			s.Marquee = &r
		}
	}
	return s
}
