// Package platform abstracts where the desktop's viewport size comes from:
// a size reported by the browser client, or the X11 root window.
package platform

import (
	"fmt"
	"strings"
	"sync"

	"github.com/1broseidon/webdesk/internal/geom"
)

// Viewport reports the current display size.
type Viewport interface {
	Size() geom.Size
}

// Resizable is a viewport whose size is pushed by a client.
type Resizable interface {
	Viewport
	SetSize(geom.Size) bool
}

// Source names a viewport backend.
type Source string

const (
	SourceFixed Source = "fixed"
	SourceX11   Source = "x11"
)

// ParseSource validates a viewport source name.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceFixed:
		return SourceFixed, nil
	case SourceX11:
		return SourceX11, nil
	default:
		return "", fmt.Errorf("unknown viewport source %q (want fixed or x11)", s)
	}
}

// Fixed is a viewport whose size is set explicitly, typically from the
// browser's reported inner window size.
type Fixed struct {
	mu   sync.RWMutex
	size geom.Size
}

var _ Resizable = (*Fixed)(nil)

// NewFixed creates a viewport of the given size.
func NewFixed(size geom.Size) *Fixed {
	return &Fixed{size: size}
}

// Size returns the current size.
func (f *Fixed) Size() geom.Size {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}

// SetSize replaces the size. Non-positive dimensions are rejected.
func (f *Fixed) SetSize(size geom.Size) bool {
	if size.W <= 0 || size.H <= 0 {
		return false
	}
	f.mu.Lock()
	f.size = size
	f.mu.Unlock()
	return true
}

// Open returns the viewport for source. fallback sizes a fixed viewport and
// is used by X11 when the server cannot be queried. The returned func
// releases any backend resources.
func Open(source Source, fallback geom.Size) (Viewport, func(), error) {
	switch source {
	case SourceFixed, "":
		return NewFixed(fallback), func() {}, nil
	case SourceX11:
		return openX11(fallback)
	default:
		return nil, nil, fmt.Errorf("unknown viewport source %q", source)
	}
}
