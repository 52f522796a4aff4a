package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/shell"
)

// localDesktop drives a shell.Desktop in-process, the way the IPC server
// would, so tool handlers can be tested without a socket.
type localDesktop struct {
	d   *shell.Desktop
	err error
}

func (l *localDesktop) GetState() (*shell.State, error) {
	if l.err != nil {
		return nil, l.err
	}
	s := l.d.Snapshot()
	return &s, nil
}

func (l *localDesktop) Open(route string) (shell.Result, error) { return l.d.Open(route), l.err }
func (l *localDesktop) Close(id string) (shell.Result, error)    { return l.d.Close(id), l.err }
func (l *localDesktop) Focus(id string) (shell.Result, error)    { return l.d.Focus(id), l.err }
func (l *localDesktop) Minimize(id string) (shell.Result, error) { return l.d.Minimize(id), l.err }
func (l *localDesktop) ToggleMaximize(id string) (shell.Result, error) {
	return l.d.ToggleMaximize(id), l.err
}

func (l *localDesktop) Move(id string, x, y int) (shell.Result, error) {
	return l.d.Move(id, geom.Point{X: x, Y: y}), l.err
}

func (l *localDesktop) Resize(id string, w, h int) (shell.Result, error) {
	return l.d.Resize(id, geom.Size{W: w, H: h}), l.err
}

func (l *localDesktop) Pointer(ev shell.PointerEvent) (bool, error) { return l.d.Pointer(ev), l.err }
func (l *localDesktop) Navigate(route string) (shell.Result, error) { return l.d.Navigate(route), l.err }
func (l *localDesktop) ToggleDarkMode() (bool, error)               { return l.d.ToggleDarkMode(), l.err }

func (l *localDesktop) Palette(p ipc.PalettePayload) (*ipc.PaletteData, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &ipc.PaletteData{Results: l.d.SearchPalette(p.Query)}, nil
}

func newTestServer(t *testing.T) (*Server, *localDesktop) {
	t.Helper()
	seq := 0
	tun := shell.DefaultTunables()
	tun.StartupRoute = ""
	d := shell.New(shell.Options{
		Viewport: platform.NewFixed(geom.Size{W: 1000, H: 800}),
		Tunables: tun,
		NewID: func(app catalog.App) string {
			seq++
			return fmt.Sprintf("%s-%d", app.ID, seq)
		},
	})
	local := &localDesktop{d: d}
	return NewServer(local, slog.New(slog.NewTextHandler(io.Discard, nil))), local
}

func TestOpenAppAndListWindows(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, first, err := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"})
	if err != nil {
		t.Fatalf("open_app: %v", err)
	}
	if !first.OK || !first.Created || first.ID == "" {
		t.Fatalf("unexpected open result: %+v", first)
	}

	_, again, err := s.handleOpenApp(ctx, nil, OpenAppInput{Route: " /about "})
	if err != nil {
		t.Fatalf("open_app again: %v", err)
	}
	if again.Created || again.ID != first.ID {
		t.Fatalf("reopening a route must reuse the window, got %+v", again)
	}

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(list.Windows) != 1 || list.Windows[0].Route != "/about" {
		t.Fatalf("unexpected windows: %+v", list.Windows)
	}
	if list.FocusedID != first.ID || !list.Windows[0].Focused {
		t.Fatalf("expected %s focused, got %+v", first.ID, list)
	}
	if list.Viewport != (geom.Size{W: 1000, H: 800}) {
		t.Fatalf("unexpected viewport %+v", list.Viewport)
	}
}

func TestOpenAppErrors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "  "}); err == nil {
		t.Fatalf("expected error for empty route")
	}
	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/nope"}); err == nil {
		t.Fatalf("expected error for unknown route")
	}
}

func TestListWindowsCanHideMinimized(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, about, _ := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"})
	s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/contact"})
	if _, res, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: about.ID, Action: "minimize"}); err != nil || !res.OK {
		t.Fatalf("minimize: %+v %v", res, err)
	}

	hide := false
	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{IncludeMinimized: &hide})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(list.Windows) != 1 || list.Windows[0].Route != "/contact" {
		t.Fatalf("expected only /contact, got %+v", list.Windows)
	}

	_, all, _ := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if len(all.Windows) != 2 {
		t.Fatalf("expected minimized windows by default, got %d", len(all.Windows))
	}
}

func TestWindowAction(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	_, w, _ := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"})

	tests := []struct {
		name    string
		input   WindowActionInput
		wantOK  bool
		wantErr bool
	}{
		{"maximize", WindowActionInput{ID: w.ID, Action: "maximize"}, true, false},
		{"case insensitive", WindowActionInput{ID: w.ID, Action: " Focus "}, true, false},
		{"close", WindowActionInput{ID: w.ID, Action: "close"}, true, false},
		{"stale id", WindowActionInput{ID: w.ID, Action: "focus"}, false, false},
		{"unknown action", WindowActionInput{ID: w.ID, Action: "explode"}, false, true},
		{"missing id", WindowActionInput{Action: "focus"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, err := s.handleWindowAction(ctx, nil, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if res.OK != tt.wantOK {
				t.Fatalf("ok = %v, want %v", res.OK, tt.wantOK)
			}
		})
	}
}

func TestMoveAndResizeWindow(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	_, w, _ := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"})

	if _, res, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: w.ID, X: 120, Y: 140}); err != nil || !res.OK {
		t.Fatalf("move: %+v %v", res, err)
	}
	if _, res, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: w.ID, Width: 420, Height: 360}); err != nil || !res.OK {
		t.Fatalf("resize: %+v %v", res, err)
	}
	if _, _, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: w.ID, Width: 0, Height: 360}); err == nil {
		t.Fatalf("expected error for zero width")
	}

	_, list, _ := s.handleListWindows(ctx, nil, ListWindowsInput{})
	got := list.Windows[0]
	if got.Position != (geom.Point{X: 120, Y: 140}) || got.Size != (geom.Size{W: 420, H: 360}) {
		t.Fatalf("unexpected geometry %+v %+v", got.Position, got.Size)
	}
}

func TestDragWindowSnapsToLeftHalf(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	_, w, _ := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"})

	_, out, err := s.handleDragWindow(ctx, nil, DragWindowInput{ID: w.ID, X: 5, Y: 400})
	if err != nil {
		t.Fatalf("drag_window: %v", err)
	}
	if out.Window.Position != (geom.Point{X: 0, Y: 0}) || out.Window.Size != (geom.Size{W: 500, H: 800}) {
		t.Fatalf("expected left half, got %+v %+v", out.Window.Position, out.Window.Size)
	}
}

func TestDragWindowWithoutSnapKeepsGrabOffset(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	_, w, _ := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/contact"})
	s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: w.ID, X: 100, Y: 100})

	// contact is 500 wide, so the grab point is (350, 112).
	_, out, err := s.handleDragWindow(ctx, nil, DragWindowInput{ID: w.ID, X: 450, Y: 312})
	if err != nil {
		t.Fatalf("drag_window: %v", err)
	}
	if out.Window.Position != (geom.Point{X: 200, Y: 300}) {
		t.Fatalf("expected window at (200,300), got %+v", out.Window.Position)
	}
}

func TestDragWindowUnknownID(t *testing.T) {
	s, _ := newTestServer(t)
	if _, _, err := s.handleDragWindow(context.Background(), nil, DragWindowInput{ID: "ghost", X: 1, Y: 1}); err == nil {
		t.Fatalf("expected error for unknown window")
	}
}

func TestNavigateSearchAndDarkMode(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, nav, err := s.handleNavigate(ctx, nil, NavigateInput{Route: "/resume"})
	if err != nil || !nav.OK || nav.ID == "" {
		t.Fatalf("navigate: %+v %v", nav, err)
	}
	if _, _, err := s.handleNavigate(ctx, nil, NavigateInput{}); err == nil {
		t.Fatalf("expected error for empty route")
	}

	_, found, err := s.handleSearchApps(ctx, nil, SearchAppsInput{Query: "trash"})
	if err != nil {
		t.Fatalf("search_apps: %v", err)
	}
	if len(found.Results) != 1 || found.Results[0].Route != "/trash" {
		t.Fatalf("unexpected search results %+v", found.Results)
	}

	_, dark, err := s.handleToggleDarkMode(ctx, nil, struct{}{})
	if err != nil || !dark.DarkMode {
		t.Fatalf("toggle_dark_mode: %+v %v", dark, err)
	}
}

func TestHandlersPropagateDesktopErrors(t *testing.T) {
	s, local := newTestServer(t)
	ctx := context.Background()
	local.err = ipc.ErrDaemonNotRunning

	if _, _, err := s.handleListWindows(ctx, nil, ListWindowsInput{}); !errors.Is(err, ipc.ErrDaemonNotRunning) {
		t.Fatalf("list_windows err = %v", err)
	}
	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{Route: "/about"}); !errors.Is(err, ipc.ErrDaemonNotRunning) {
		t.Fatalf("open_app err = %v", err)
	}
	if _, _, err := s.handleSearchApps(ctx, nil, SearchAppsInput{}); !errors.Is(err, ipc.ErrDaemonNotRunning) {
		t.Fatalf("search_apps err = %v", err)
	}
}
