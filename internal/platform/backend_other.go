//go:build !linux

package platform

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/webdesk/internal/geom"
)

func openX11(geom.Size) (Viewport, func(), error) {
	return nil, nil, fmt.Errorf("x11 viewport is not supported on %s", runtime.GOOS)
}
