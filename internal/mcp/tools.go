package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/shell"
)

// headerGrabY is how far below a window's top edge drag_window presses.
const headerGrabY = 12

func windowInfo(v shell.WindowView) WindowInfo {
	return WindowInfo{
		ID:        v.ID,
		Route:     v.Route,
		Title:     v.Title,
		Position:  v.Position,
		Size:      v.Size,
		ZIndex:    v.ZIndex,
		Minimized: v.Minimized,
		Maximized: v.Maximized,
		Focused:   v.Focused,
	}
}

func toWindowResult(res shell.Result) WindowResult {
	return WindowResult{OK: res.OK, ID: res.ID, Created: res.Created}
}

func (s *Server) findWindow(id string) (shell.WindowView, error) {
	state, err := s.desktop.GetState()
	if err != nil {
		return shell.WindowView{}, err
	}
	for _, w := range state.Windows {
		if w.ID == id {
			return w, nil
		}
	}
	return shell.WindowView{}, fmt.Errorf("window %q not found", id)
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	state, err := s.desktop.GetState()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	includeMinimized := args.IncludeMinimized == nil || *args.IncludeMinimized

	windows := make([]WindowInfo, 0, len(state.Windows))
	for _, w := range state.Windows {
		if w.Minimized && !includeMinimized {
			continue
		}
		windows = append(windows, windowInfo(w))
	}
	s.logger.Debug("listed windows", "count", len(windows))

	return nil, ListWindowsOutput{
		Location:  state.Location,
		Viewport:  state.Viewport,
		FocusedID: state.FocusedID,
		Windows:   windows,
	}, nil
}

func (s *Server) handleOpenApp(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenAppInput) (*mcpsdk.CallToolResult, WindowResult, error) {
	route := strings.TrimSpace(args.Route)
	if route == "" {
		return nil, WindowResult{}, fmt.Errorf("route is required")
	}
	res, err := s.desktop.Open(route)
	if err != nil {
		return nil, WindowResult{}, err
	}
	if !res.OK {
		return nil, WindowResult{}, fmt.Errorf("no app is registered for route %q", route)
	}
	s.logger.Info("opened app", "route", route, "window", res.ID, "created", res.Created)
	return nil, toWindowResult(res), nil
}

func (s *Server) handleSearchApps(_ context.Context, _ *mcpsdk.CallToolRequest, args SearchAppsInput) (*mcpsdk.CallToolResult, SearchAppsOutput, error) {
	data, err := s.desktop.Palette(ipc.PalettePayload{Action: ipc.PaletteQuery, Query: args.Query})
	if err != nil {
		return nil, SearchAppsOutput{}, err
	}
	return nil, SearchAppsOutput{Results: data.Results}, nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowResult, error) {
	if args.ID == "" {
		return nil, WindowResult{}, fmt.Errorf("id is required")
	}

	var op func(string) (shell.Result, error)
	switch strings.ToLower(strings.TrimSpace(args.Action)) {
	case "focus":
		op = s.desktop.Focus
	case "minimize":
		op = s.desktop.Minimize
	case "maximize":
		op = s.desktop.ToggleMaximize
	case "close":
		op = s.desktop.Close
	default:
		return nil, WindowResult{}, fmt.Errorf("unknown action %q (want focus, minimize, maximize or close)", args.Action)
	}

	res, err := op(args.ID)
	if err != nil {
		return nil, WindowResult{}, err
	}
	s.logger.Info("window action", "action", args.Action, "window", args.ID, "ok", res.OK)
	return nil, toWindowResult(res), nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowResult, error) {
	if args.ID == "" {
		return nil, WindowResult{}, fmt.Errorf("id is required")
	}
	res, err := s.desktop.Move(args.ID, args.X, args.Y)
	if err != nil {
		return nil, WindowResult{}, err
	}
	return nil, toWindowResult(res), nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowResult, error) {
	if args.ID == "" {
		return nil, WindowResult{}, fmt.Errorf("id is required")
	}
	if args.Width <= 0 || args.Height <= 0 {
		return nil, WindowResult{}, fmt.Errorf("width and height must be > 0")
	}
	res, err := s.desktop.Resize(args.ID, args.Width, args.Height)
	if err != nil {
		return nil, WindowResult{}, err
	}
	return nil, toWindowResult(res), nil
}

// handleDragWindow replays a title-bar drag as down, move and up so the
// desktop applies the same snapping a pointer would.
func (s *Server) handleDragWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DragWindowInput) (*mcpsdk.CallToolResult, DragWindowOutput, error) {
	if args.ID == "" {
		return nil, DragWindowOutput{}, fmt.Errorf("id is required")
	}
	w, err := s.findWindow(args.ID)
	if err != nil {
		return nil, DragWindowOutput{}, err
	}

	grab := shell.PointerEvent{
		Kind:   shell.PointerDown,
		Target: shell.TargetHeader,
		ID:     args.ID,
		X:      w.Position.X + w.Size.W/2,
		Y:      w.Position.Y + headerGrabY,
	}
	started, err := s.desktop.Pointer(grab)
	if err != nil {
		return nil, DragWindowOutput{}, err
	}
	if !started {
		return nil, DragWindowOutput{}, fmt.Errorf("could not start dragging %q (another gesture is active)", args.ID)
	}

	steps := []shell.PointerEvent{
		{Kind: shell.PointerMove, X: args.X, Y: args.Y},
		{Kind: shell.PointerUp, X: args.X, Y: args.Y},
	}
	for _, ev := range steps {
		if _, err := s.desktop.Pointer(ev); err != nil {
			return nil, DragWindowOutput{}, err
		}
	}

	final, err := s.findWindow(args.ID)
	if err != nil {
		return nil, DragWindowOutput{}, err
	}
	s.logger.Info("dragged window", "window", args.ID, "x", args.X, "y", args.Y)
	return nil, DragWindowOutput{Window: windowInfo(final)}, nil
}

func (s *Server) handleNavigate(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateInput) (*mcpsdk.CallToolResult, WindowResult, error) {
	if strings.TrimSpace(args.Route) == "" {
		return nil, WindowResult{}, fmt.Errorf("route is required")
	}
	res, err := s.desktop.Navigate(args.Route)
	if err != nil {
		return nil, WindowResult{}, err
	}
	return nil, toWindowResult(res), nil
}

func (s *Server) handleToggleDarkMode(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ToggleDarkModeOutput, error) {
	dark, err := s.desktop.ToggleDarkMode()
	if err != nil {
		return nil, ToggleDarkModeOutput{}, err
	}
	return nil, ToggleDarkModeOutput{DarkMode: dark}, nil
}
