package x11

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/webdesk/internal/geom"
)

// Viewport reports the work area size of the monitor under the pointer.
// The server is queried on every call; when a query fails the last good
// size (initially fallback) is returned.
type Viewport struct {
	conn *Connection

	mu   sync.Mutex
	last geom.Size
}

// NewViewport wraps conn.
func NewViewport(conn *Connection, fallback geom.Size) *Viewport {
	return &Viewport{conn: conn, last: fallback}
}

// Size returns the current work area size.
func (v *Viewport) Size() geom.Size {
	area, err := v.conn.WorkArea()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		slog.Debug("x11 work area query failed, using last size", "error", err, "size", v.last)
		return v.last
	}
	v.last = area.Size()
	return v.last
}
