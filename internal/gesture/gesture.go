// Package gesture turns pointer down/move/up events into window moves and
// resizes. At most one session is active at a time and it is bound to a
// single window.
package gesture

import (
	"log/slog"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/snap"
	"github.com/1broseidon/webdesk/internal/wm"
)

// Phase represents the current phase of the controller
type Phase int

const (
	// PhaseIdle means no gesture is in progress
	PhaseIdle Phase = iota
	// PhaseDragging means a window is following the pointer by its header
	PhaseDragging
	// PhaseResizing means a window is being resized from its corner handle
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Target is the part of a window a pointer-down landed on.
type Target string

const (
	TargetHeader       Target = "header"
	TargetResizeHandle Target = "resize-handle"
)

// DefaultMinSize is the resize floor.
var DefaultMinSize = geom.Size{W: 300, H: 200}

// Windows is the subset of the window registry the controller needs.
type Windows interface {
	Lookup(id string) (wm.View, bool)
	Focus(id string) bool
	Move(id string, pos geom.Point) bool
	Resize(id string, size geom.Size) bool
	VisibleRects(exclude string) []geom.Rect
	ViewportSize() geom.Size
}

// Session is the controller's working state for one gesture.
type Session struct {
	Phase    Phase
	WindowID string

	// Dragging
	Offset      geom.Point
	PendingSnap *geom.Rect
	SnapEdge    snap.Edge

	// Resizing
	StartSize    geom.Size
	StartPointer geom.Point
}

// Reset returns the session to idle.
func (s *Session) Reset() {
	*s = Session{}
}

// Options configures a Controller.
type Options struct {
	Threshold int
	MinSize   geom.Size
	Logger    *slog.Logger
}

// Controller drives drag and resize sessions against a window registry.
type Controller struct {
	windows   Windows
	threshold int
	minSize   geom.Size
	logger    *slog.Logger
	session   Session
}

// NewController creates an idle controller.
func NewController(windows Windows, opts Options) *Controller {
	c := &Controller{
		windows: windows,
		logger:  opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.SetTunables(opts.Threshold, opts.MinSize)
	return c
}

// SetTunables updates the snap threshold and resize floor. Zero values take
// the defaults. An active session picks up the new values on its next move.
func (c *Controller) SetTunables(threshold int, minSize geom.Size) {
	if threshold <= 0 {
		threshold = snap.DefaultThreshold
	}
	if minSize.W <= 0 {
		minSize.W = DefaultMinSize.W
	}
	if minSize.H <= 0 {
		minSize.H = DefaultMinSize.H
	}
	c.threshold = threshold
	c.minSize = minSize
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	s := c.session
	if s.PendingSnap != nil {
		r := *s.PendingSnap
		s.PendingSnap = &r
	}
	return s
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool {
	return c.session.Phase != PhaseIdle
}

// Transitions reports whether geometry changes should be animated. They are
// not while a gesture is tracking the pointer.
func (c *Controller) Transitions() bool {
	return !c.Active()
}

// Down starts a session. It returns false when a session is already active,
// the window is gone, or a resize is requested on a maximized window.
func (c *Controller) Down(target Target, id string, pointer geom.Point) bool {
	if c.Active() {
		return false
	}
	w, ok := c.windows.Lookup(id)
	if !ok {
		return false
	}

	switch target {
	case TargetHeader:
		c.session = Session{
			Phase:    PhaseDragging,
			WindowID: id,
			Offset:   pointer.Sub(w.Position),
		}
		c.windows.Focus(id)
	case TargetResizeHandle:
		if w.Maximized {
			return false
		}
		c.session = Session{
			Phase:        PhaseResizing,
			WindowID:     id,
			StartSize:    w.Size,
			StartPointer: pointer,
		}
	default:
		return false
	}

	c.logger.Debug("gesture started", "phase", c.session.Phase.String(), "window", id)
	return true
}

// Move feeds a pointer position into the active session and commits the
// resulting geometry. It returns false when idle.
func (c *Controller) Move(pointer geom.Point) bool {
	switch c.session.Phase {
	case PhaseDragging:
		return c.drag(pointer)
	case PhaseResizing:
		return c.resize(pointer)
	default:
		return false
	}
}

func (c *Controller) drag(pointer geom.Point) bool {
	id := c.session.WindowID
	w, ok := c.windows.Lookup(id)
	if !ok {
		c.end("window closed")
		return false
	}

	res := snap.Compute(snap.Query{
		Size:      w.Size,
		Candidate: pointer.Sub(c.session.Offset),
		Pointer:   pointer,
		Viewport:  c.windows.ViewportSize(),
		Others:    c.windows.VisibleRects(id),
		Threshold: c.threshold,
	})

	pos := res.Position
	if pos.Y < 0 {
		pos.Y = 0
	}
	c.session.PendingSnap = res.Target
	c.session.SnapEdge = res.Edge
	return c.windows.Move(id, pos)
}

func (c *Controller) resize(pointer geom.Point) bool {
	id := c.session.WindowID
	if _, ok := c.windows.Lookup(id); !ok {
		c.end("window closed")
		return false
	}

	delta := pointer.Sub(c.session.StartPointer)
	size := geom.Size{
		W: max(c.minSize.W, c.session.StartSize.W+delta.X),
		H: max(c.minSize.H, c.session.StartSize.H+delta.Y),
	}
	return c.windows.Resize(id, size)
}

// Up ends the active session. A drag with a pending snap target commits the
// target rectangle. It returns false when idle.
func (c *Controller) Up() bool {
	if !c.Active() {
		return false
	}
	if c.session.Phase == PhaseDragging && c.session.PendingSnap != nil {
		target := *c.session.PendingSnap
		c.windows.Move(c.session.WindowID, target.Pos())
		c.windows.Resize(c.session.WindowID, target.Size())
		c.logger.Debug("snapped window", "window", c.session.WindowID, "edge", c.session.SnapEdge.String(), "rect", target)
	}
	c.end("pointer released")
	return true
}

func (c *Controller) end(reason string) {
	c.logger.Debug("gesture ended", "phase", c.session.Phase.String(), "window", c.session.WindowID, "reason", reason)
	c.session.Reset()
}
