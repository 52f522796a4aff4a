// Package mcp exposes the running desktop to MCP clients as tools that
// list, open, arrange and close windows through the daemon's IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/shell"
)

const (
	ServerName    = "webdesk"
	ServerVersion = "0.1.0"
)

// Desktop is the subset of the IPC client the tools drive.
type Desktop interface {
	GetState() (*shell.State, error)
	Open(route string) (shell.Result, error)
	Close(id string) (shell.Result, error)
	Focus(id string) (shell.Result, error)
	Minimize(id string) (shell.Result, error)
	ToggleMaximize(id string) (shell.Result, error)
	Move(id string, x, y int) (shell.Result, error)
	Resize(id string, w, h int) (shell.Result, error)
	Pointer(ev shell.PointerEvent) (bool, error)
	Navigate(route string) (shell.Result, error)
	ToggleDarkMode() (bool, error)
	Palette(p ipc.PalettePayload) (*ipc.PaletteData, error)
}

var _ Desktop = (*ipc.Client)(nil)

// Server is the MCP server for desktop automation.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   Desktop
	logger    *slog.Logger
}

// NewServer creates a server backed by desktop. A nil logger uses
// slog.Default().
func NewServer(desktop Desktop, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		desktop: desktop,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List open desktop windows with their geometry, z-order, minimized/maximized flags and which one has focus. Also reports the current location and viewport size.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_app",
		Description: "Open the app registered for a route (e.g. /about, /projects). If a window for the route already exists it is restored and focused instead of creating a second one.",
	}, s.handleOpenApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "search_apps",
		Description: "Search the app catalog the same way the command palette does. An empty query returns every app.",
	}, s.handleSearchApps)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Apply focus, minimize, maximize (toggle) or close to a window by id. ok is false when the id no longer exists.",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Set a window's top-left position in viewport pixels. The result is clamped so the window stays reachable.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Set a window's size in pixels. Sizes below the minimum window size are raised to it.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag_window",
		Description: "Drag a window by its title bar and release the pointer at (x, y). Releasing near the top edge fills the viewport; near the left or right edge snaps to that half.",
	}, s.handleDragWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate",
		Description: "Navigate the desktop to a location path. Known routes open their app; the home route leaves windows as they are.",
	}, s.handleNavigate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_dark_mode",
		Description: "Flip the desktop between light and dark themes and return the new setting.",
	}, s.handleToggleDarkMode)
}
