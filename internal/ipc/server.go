package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/shell"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	SocketPath string
	Desktop    *shell.Desktop
	// Reload re-reads the config and applies it. Nil disables RELOAD.
	Reload func() error
	// Reported by GET_STATUS.
	ViewportSource string
	HTTPListen     string
	Logger         *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	desktop    *shell.Desktop
	reload     func() error
	viewport   string
	httpListen string
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Desktop == nil {
		return nil, fmt.Errorf("ipc server requires a desktop")
	}
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("ipc server requires a socket path")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: cfg.SocketPath,
		desktop:    cfg.Desktop,
		reload:     cfg.Reload,
		viewport:   cfg.ViewportSource,
		httpListen: cfg.HTTPListen,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

func (s *Server) String() string { return "ipc" }

// Serve listens on the socket until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("ipc listener closed: %w", err)
			}
			s.logger.Warn("ipc accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// handleConnection serves one request on conn.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal ipc response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send ipc response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("ipc request", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetState:
		return ok(s.desktop.Snapshot())
	case CommandReload:
		return s.handleReload()
	case CommandOpen:
		return withPayload(req.Payload, func(p RoutePayload) *Response {
			if strings.TrimSpace(p.Route) == "" {
				return NewErrorResponse("route is required")
			}
			return ok(s.desktop.Open(p.Route))
		})
	case CommandClose:
		return s.windowCommand(req.Payload, s.desktop.Close)
	case CommandFocus:
		return s.windowCommand(req.Payload, s.desktop.Focus)
	case CommandMinimize:
		return s.windowCommand(req.Payload, s.desktop.Minimize)
	case CommandToggleMaximize:
		return s.windowCommand(req.Payload, s.desktop.ToggleMaximize)
	case CommandMove:
		return withPayload(req.Payload, func(p MovePayload) *Response {
			return ok(s.desktop.Move(p.ID, geom.Point{X: p.X, Y: p.Y}))
		})
	case CommandResize:
		return withPayload(req.Payload, func(p ResizePayload) *Response {
			if p.W <= 0 || p.H <= 0 {
				return NewErrorResponse("w and h must be > 0")
			}
			return ok(s.desktop.Resize(p.ID, geom.Size{W: p.W, H: p.H}))
		})
	case CommandPointer:
		return withPayload(req.Payload, func(ev shell.PointerEvent) *Response {
			switch ev.Kind {
			case shell.PointerDown, shell.PointerMove, shell.PointerUp:
			default:
				return NewErrorResponse(fmt.Sprintf("unknown pointer kind %q", ev.Kind))
			}
			return ok(HandledData{Handled: s.desktop.Pointer(ev)})
		})
	case CommandNavigate:
		return withPayload(req.Payload, func(p RoutePayload) *Response {
			return ok(s.desktop.Navigate(p.Route))
		})
	case CommandToggleDarkMode:
		return ok(DarkModeData{DarkMode: s.desktop.ToggleDarkMode()})
	case CommandSetViewport:
		return withPayload(req.Payload, func(p ViewportPayload) *Response {
			if !s.desktop.SetViewport(geom.Size{W: p.Width, H: p.Height}) {
				return NewErrorResponse("viewport cannot be set (non-positive size or display-owned viewport)")
			}
			return ok(nil)
		})
	case CommandPalette:
		return withPayload(req.Payload, s.handlePalette)
	case CommandKey:
		return withPayload(req.Payload, func(ev shell.KeyEvent) *Response {
			if ev.Key == "" {
				return NewErrorResponse("key is required")
			}
			return ok(HandledData{Handled: s.desktop.Key(ev)})
		})
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	state := s.desktop.Snapshot()
	return ok(StatusData{
		DaemonRunning:  true,
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		WindowCount:    len(state.Windows),
		FocusedID:      state.FocusedID,
		Location:       state.Location,
		Version:        state.Version,
		ViewportSource: s.viewport,
		HTTPListen:     s.httpListen,
	})
}

func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	s.logger.Info("ipc reload requested")
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(nil)
}

func (s *Server) windowCommand(payload json.RawMessage, op func(string) shell.Result) *Response {
	return withPayload(payload, func(p WindowPayload) *Response {
		if p.ID == "" {
			return NewErrorResponse("id is required")
		}
		return ok(op(p.ID))
	})
}

func (s *Server) handlePalette(p PalettePayload) *Response {
	switch p.Action {
	case PaletteOpen:
		s.desktop.OpenPalette()
	case PaletteClose:
		s.desktop.ClosePalette()
	case PaletteToggle:
		s.desktop.TogglePalette()
	case PaletteQuery:
		s.desktop.SearchPalette(p.Query)
	case PaletteLaunch:
		if p.Route == "" {
			return NewErrorResponse("route is required")
		}
		res := s.desktop.Launch(p.Route)
		view := s.desktop.Snapshot().Palette
		return ok(PaletteData{Open: view.Open, Results: view.Results, Launched: &res})
	default:
		return NewErrorResponse(fmt.Sprintf("unknown palette action %q", p.Action))
	}
	view := s.desktop.Snapshot().Palette
	return ok(PaletteData{Open: view.Open, Results: view.Results})
}

// withPayload decodes payload into T before calling fn.
func withPayload[T any](payload json.RawMessage, fn func(T) *Response) *Response {
	var v T
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &v); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
		}
	}
	return fn(v)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
