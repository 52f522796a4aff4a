package shell

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/gesture"
	"github.com/1broseidon/webdesk/internal/nav"
	"github.com/1broseidon/webdesk/internal/palette"
)

// PointerKind is the phase of a pointer event.
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// Pointer targets beyond the two gesture handles.
const (
	TargetHeader       = string(gesture.TargetHeader)
	TargetResizeHandle = string(gesture.TargetResizeHandle)
	TargetWindow       = "window"
	TargetDesktop      = "desktop"
)

// PointerEvent is one pointer event from a client.
type PointerEvent struct {
	Kind   PointerKind `json:"kind"`
	Target string      `json:"target,omitempty"`
	ID     string      `json:"id,omitempty"`
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Shift  bool        `json:"shift,omitempty"`
}

// KeyEvent is one key press.
type KeyEvent struct {
	Key  string `json:"key"`
	Meta bool   `json:"meta,omitempty"`
	Ctrl bool   `json:"ctrl,omitempty"`
}

const greeting = "Hello there, curious one! Welcome to the desktop!"

const (
	sparkleMessage = "✨ Sparkle Mode Activated! Watch your cursor..."
	sparkleClicks  = 5
	sparkleFor     = 10 * time.Second
)

// marquee is a rubber-band selection on the bare desktop.
type marquee struct {
	start, end geom.Point
}

// visible returns the normalized rectangle once it is larger than 5x5.
func (m *marquee) visible() (geom.Rect, bool) {
	r := geom.Rect{
		X:      min(m.start.X, m.end.X),
		Y:      min(m.start.Y, m.end.Y),
		Width:  geom.Abs(m.end.X - m.start.X),
		Height: geom.Abs(m.end.Y - m.start.Y),
	}
	return r, r.Width > 5 && r.Height > 5
}

// Pointer routes a pointer event. Down events on a header or resize handle
// start a gesture; move and up events feed whichever gesture is active. A
// down on a window body focuses it, and a down on the bare desktop starts a
// marquee. Any down closes the context menu, and every fifth shift-down
// turns on sparkle mode. The result is false when the event had no effect.
func (d *Desktop) Pointer(ev PointerEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := geom.Point{X: ev.X, Y: ev.Y}
	var handled bool

	switch ev.Kind {
	case PointerDown:
		closedMenu := d.menu != nil
		d.menu = nil
		switch ev.Target {
		case TargetHeader, TargetResizeHandle:
			handled = d.gestures.Down(gesture.Target(ev.Target), ev.ID, p)
		case TargetWindow:
			handled = d.reg.Focus(ev.ID)
		case TargetDesktop:
			d.marquee = &marquee{start: p, end: p}
			handled = true
		}
		sparkled := ev.Shift && d.countShiftClick()
		handled = handled || closedMenu || sparkled
	case PointerMove:
		if d.gestures.Active() {
			// A session whose window vanished ends here; still publish.
			d.gestures.Move(p)
			handled = true
		} else if d.marquee != nil {
			d.marquee.end = p
			handled = true
		}
	case PointerUp:
		handled = d.gestures.Up()
		if d.marquee != nil {
			d.marquee = nil
			handled = true
		}
	}

	if handled {
		d.commit("pointer-" + string(ev.Kind))
	}
	return handled
}

// Key handles a key press: "/" or meta+k toggles the palette, Escape closes
// it, and plain printable keys feed the greeting detector. Keys never
// affect an active drag or resize.
func (d *Desktop) Key(ev KeyEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := false
	if ev.Key == "/" || (ev.Meta && strings.EqualFold(ev.Key, "k")) {
		d.palette.Toggle()
		changed = true
	}
	if ev.Key == "Escape" && d.palette.IsOpen() {
		d.palette.Close()
		changed = true
	}

	if utf8.RuneCountInString(ev.Key) == 1 && !ev.Meta && !ev.Ctrl {
		d.typed = lastRunes(d.typed+strings.ToLower(ev.Key), 5)
		if d.typed == "hello" {
			d.showToast(greeting)
			changed = true
		}
	}

	if changed {
		d.commit("key")
	}
	return changed
}

// countShiftClick records a shift-down and reports whether it switched
// sparkle mode on. Clicks keep counting while sparkle mode is already on.
func (d *Desktop) countShiftClick() bool {
	d.shiftClicks++
	if d.shiftClicks < sparkleClicks || d.sparkle {
		return false
	}
	d.shiftClicks = 0
	d.sparkle = true
	d.showToast(sparkleMessage)
	d.stopSparkle = d.afterFunc(sparkleFor, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.sparkle {
			d.sparkle = false
			d.stopSparkle = nil
			d.commit("sparkle-expired")
		}
	})
	return true
}

func (d *Desktop) clearSparkle() {
	if d.stopSparkle != nil {
		d.stopSparkle()
		d.stopSparkle = nil
	}
	d.sparkle = false
	d.shiftClicks = 0
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// OpenPalette shows the command palette.
func (d *Desktop) OpenPalette() {
	d.paletteOp(func() { d.palette.Open() })
}

// ClosePalette hides the command palette.
func (d *Desktop) ClosePalette() {
	d.paletteOp(func() { d.palette.Close() })
}

// TogglePalette flips the palette and reports whether it is now open.
func (d *Desktop) TogglePalette() bool {
	var open bool
	d.paletteOp(func() { open = d.palette.Toggle() })
	return open
}

// SearchPalette sets the palette query and returns the matches.
func (d *Desktop) SearchPalette(query string) []palette.Item {
	var items []palette.Item
	d.paletteOp(func() {
		d.palette.SetQuery(query)
		items = d.palette.Results(d.catalog.Apps())
	})
	return items
}

// Launch opens route from the palette and closes the palette.
func (d *Desktop) Launch(route string) Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, created := d.reg.Open(nav.Clean(route))
	d.palette.Close()
	d.commit("launch")
	return Result{OK: id != "", ID: id, Created: created}
}

func (d *Desktop) paletteOp(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
	d.commit("palette")
}

// OpenContextMenu shows the desktop context menu at pos.
func (d *Desktop) OpenContextMenu(pos geom.Point) palette.Menu {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := palette.ContextMenu(pos, d.dark)
	d.menu = &m
	d.commit("context-menu")
	return m
}

// CloseContextMenu hides the context menu.
func (d *Desktop) CloseContextMenu() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.menu == nil {
		return
	}
	d.menu = nil
	d.commit("context-menu")
}

// ContextAction runs a context menu entry and closes the menu. It returns
// false for actions the open menu does not offer.
func (d *Desktop) ContextAction(action palette.Action) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.menu == nil || !d.menu.Has(action) {
		return false
	}
	d.menu = nil

	switch action {
	case palette.ActionNewWindow:
		route := d.tun.StartupRoute
		if route == "" {
			route = DefaultStartupRoute
		}
		d.reg.Open(route)
	case palette.ActionAbout:
		d.reg.Open(DefaultStartupRoute)
	case palette.ActionSearchApps:
		d.palette.Open()
	case palette.ActionToggleDarkMode:
		d.dark = !d.dark
	case palette.ActionRefresh:
		d.reset()
		d.start()
	}
	d.commit("context-action")
	return true
}
