// Package snap computes where a dragged window should be attracted to:
// screen edges first, then the edges of other visible windows.
//
// All functions are pure. A distance snaps when it is strictly less than the
// threshold, so a pointer exactly threshold pixels from an edge does not snap.
package snap

import "github.com/1broseidon/webdesk/internal/geom"

// DefaultThreshold is the snap distance in pixels.
const DefaultThreshold = 20

// Edge identifies which screen edge rule matched.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeLeft
	EdgeRight
)

// String returns the string representation of the edge
func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeTop:
		return "top"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Query is one snap computation. Others must be a snapshot of the visible
// windows excluding the dragged one.
type Query struct {
	Size      geom.Size
	Candidate geom.Point
	Pointer   geom.Point
	Viewport  geom.Size
	Others    []geom.Rect
	Threshold int
}

// Result holds the adjusted position and, for screen edges, the rectangle the
// window takes on release.
type Result struct {
	Position geom.Point
	Target   *geom.Rect
	Edge     Edge
}

// Compute applies the screen edge rules to the pointer and, when none
// matches, pulls the candidate position toward neighboring windows.
func Compute(q Query) Result {
	threshold := q.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	if edge := ScreenEdge(q.Pointer, q.Viewport, threshold); edge != EdgeNone {
		target := EdgeRect(edge, q.Viewport)
		return Result{Position: q.Candidate, Target: &target, Edge: edge}
	}

	return Result{Position: Magnetize(q.Candidate, q.Size, q.Others, threshold)}
}

// ScreenEdge returns the first matching edge in priority order top, left, right.
func ScreenEdge(pointer geom.Point, viewport geom.Size, threshold int) Edge {
	switch {
	case pointer.Y < threshold:
		return EdgeTop
	case pointer.X < threshold:
		return EdgeLeft
	case pointer.X > viewport.W-threshold:
		return EdgeRight
	default:
		return EdgeNone
	}
}

// EdgeRect returns the rectangle a window occupies when snapped to edge.
// Halves use integer division; the right half starts at W/2.
func EdgeRect(edge Edge, viewport geom.Size) geom.Rect {
	full := geom.Rect{Width: viewport.W, Height: viewport.H}

	switch edge {
	case EdgeLeft:
		full.Width = viewport.W / 2
	case EdgeRight:
		full.X = viewport.W / 2
		full.Width = viewport.W / 2
	}

	return full
}

// Magnetize pulls pos toward the edges of others. Each of the four alignments
// is tested independently against every neighbor in order, and each
// adjustment is visible to the checks that follow it.
func Magnetize(pos geom.Point, size geom.Size, others []geom.Rect, threshold int) geom.Point {
	for _, o := range others {
		if geom.Abs(pos.X-o.Right()) < threshold {
			pos.X = o.Right()
		}
		if geom.Abs(pos.X+size.W-o.X) < threshold {
			pos.X = o.X - size.W
		}
		if geom.Abs(pos.Y-o.Bottom()) < threshold {
			pos.Y = o.Bottom()
		}
		if geom.Abs(pos.Y+size.H-o.Y) < threshold {
			pos.Y = o.Y - size.H
		}
	}
	return pos
}
