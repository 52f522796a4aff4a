package wm

import (
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
)

// Frame is a position and size pair.
type Frame struct {
	Pos  geom.Point `json:"position"`
	Size geom.Size  `json:"size"`
}

// Rect returns the frame as a rectangle.
func (f Frame) Rect() geom.Rect {
	return geom.RectFrom(f.Pos, f.Size)
}

// Geometry is either normal or maximized. A maximized geometry always carries
// the frame it was maximized from.
type Geometry struct {
	Frame
	saved *Frame
}

// Maximized reports whether the geometry is in the maximized state.
func (g Geometry) Maximized() bool {
	return g.saved != nil
}

// Saved returns the pre-maximize frame, if any.
func (g Geometry) Saved() (Frame, bool) {
	if g.saved == nil {
		return Frame{}, false
	}
	return *g.saved, true
}

func (g *Geometry) maximize(full Frame) {
	prev := g.Frame
	g.saved = &prev
	g.Frame = full
}

// restore returns to the saved frame. A missing snapshot leaves the frame as is.
func (g *Geometry) restore() {
	if g.saved != nil {
		g.Frame = *g.saved
	}
	g.saved = nil
}

func (g *Geometry) unmaximize() {
	g.saved = nil
}

// Window is one open application instance.
type Window struct {
	ID            string
	Route         string
	Title         string
	Icon          string
	Chrome        catalog.ChromeStyle
	Geometry      Geometry
	Z             int
	Minimized     bool
	LastFocusedAt time.Time
}

// Rect returns the window's current rectangle.
func (w *Window) Rect() geom.Rect {
	return w.Geometry.Rect()
}

// Maximized reports whether the window is maximized.
func (w *Window) Maximized() bool {
	return w.Geometry.Maximized()
}

// View is a read-only, serializable copy of a Window.
type View struct {
	ID            string              `json:"id"`
	Route         string              `json:"route"`
	Title         string              `json:"title"`
	Icon          string              `json:"icon"`
	Chrome        catalog.ChromeStyle `json:"chrome_style"`
	Position      geom.Point          `json:"position"`
	Size          geom.Size           `json:"size"`
	PreMaximize   *Frame              `json:"pre_maximize,omitempty"`
	ZIndex        int                 `json:"z_index"`
	Minimized     bool                `json:"minimized"`
	Maximized     bool                `json:"maximized"`
	Focused       bool                `json:"focused"`
	LastFocusedAt time.Time           `json:"last_focused_at"`
}

func (w *Window) view(focused bool) View {
	v := View{
		ID:            w.ID,
		Route:         w.Route,
		Title:         w.Title,
		Icon:          w.Icon,
		Chrome:        w.Chrome,
		Position:      w.Geometry.Pos,
		Size:          w.Geometry.Size,
		ZIndex:        w.Z,
		Minimized:     w.Minimized,
		Maximized:     w.Maximized(),
		Focused:       focused,
		LastFocusedAt: w.LastFocusedAt,
	}
	if saved, ok := w.Geometry.Saved(); ok {
		v.PreMaximize = &saved
	}
	return v
}
