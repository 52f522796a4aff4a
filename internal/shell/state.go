package shell

import (
	"time"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/palette"
	"github.com/1broseidon/webdesk/internal/wm"
)

// State is a full render snapshot of the desktop.
type State struct {
	Version     uint64        `json:"version"`
	Location    string        `json:"location"`
	Viewport    geom.Size     `json:"viewport"`
	Windows     []WindowView  `json:"windows"`
	Stack       []string      `json:"stack"`
	FocusedID   string        `json:"focused_id,omitempty"`
	DarkMode    bool          `json:"dark_mode"`
	Sparkle     bool          `json:"sparkle,omitempty"`
	Transitions bool          `json:"transitions"`
	Gesture     GestureView   `json:"gesture"`
	Palette     PaletteView   `json:"palette"`
	ContextMenu *palette.Menu `json:"context_menu,omitempty"`
	Toast       *Toast        `json:"toast,omitempty"`
	Marquee     *geom.Rect    `json:"marquee,omitempty"`
	Unlocked    []Achievement `json:"achievements,omitempty"`
}

// WindowView is a window as the dock and window layer draw it.
type WindowView struct {
	wm.View
	Resizable bool `json:"resizable"`
}

// GestureView exposes the active drag or resize.
type GestureView struct {
	Phase       string     `json:"phase"`
	WindowID    string     `json:"window_id,omitempty"`
	SnapPreview *geom.Rect `json:"snap_preview,omitempty"`
	SnapEdge    string     `json:"snap_edge,omitempty"`
}

// PaletteView is the command palette as rendered.
type PaletteView struct {
	Open    bool           `json:"open"`
	Query   string         `json:"query"`
	Results []palette.Item `json:"results,omitempty"`
}

// Toast is a transient notification.
type Toast struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Window returns the view for id from the snapshot.
func (s State) Window(id string) (WindowView, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowView{}, false
}

// Result reports the outcome of a desktop operation. OK is false when the
// route or window id was unknown; that is not an error.
type Result struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Created bool   `json:"created,omitempty"`
}
