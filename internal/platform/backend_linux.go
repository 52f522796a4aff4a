//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/x11"
)

func openX11(fallback geom.Size) (Viewport, func(), error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return x11.NewViewport(conn, fallback), conn.Close, nil
}
