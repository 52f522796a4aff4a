package ipc

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/shell"
)

func newTestServer(t *testing.T, reload func() error) *Server {
	t.Helper()
	seq := 0
	tun := shell.DefaultTunables()
	tun.StartupRoute = ""
	desk := shell.New(shell.Options{
		Viewport: platform.NewFixed(geom.Size{W: 1000, H: 800}),
		Tunables: tun,
		NewID: func(app catalog.App) string {
			seq++
			return fmt.Sprintf("%s-%d", app.ID, seq)
		},
		AfterFunc: func(time.Duration, func()) func() bool { return func() bool { return true } },
	})
	srv, err := NewServer(ServerConfig{
		SocketPath:     filepath.Join(t.TempDir(), "webdesk.sock"),
		Desktop:        desk,
		Reload:         reload,
		ViewportSource: "fixed",
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

// pipeClient returns a client whose connections are served in-process.
func pipeClient(srv *Server) *Client {
	c := NewClientWithSocket("unused")
	c.dial = func(string, time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go srv.handleConnection(server)
		return client, nil
	}
	return c
}

func TestNewServer_RequiresDesktopAndSocket(t *testing.T) {
	if _, err := NewServer(ServerConfig{SocketPath: "x"}); err == nil {
		t.Fatalf("expected error without desktop")
	}
	if _, err := NewServer(ServerConfig{Desktop: shell.New(shell.Options{})}); err == nil {
		t.Fatalf("expected error without socket path")
	}
}

func TestHandleConnection_InvalidRequest(t *testing.T) {
	srv := newTestServer(t, nil)
	client, server := net.Pipe()
	go srv.handleConnection(server)
	defer client.Close()

	if _, err := client.Write([]byte("not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 512)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(buf[:n]), `"status":"ERROR"`) {
		t.Fatalf("expected error response, got %s", buf[:n])
	}
}

func TestHandleCommand_UnknownCommand(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := srv.handleCommand(&Request{Command: "NOPE"})
	if resp.Status != StatusError || !strings.Contains(resp.Error, "NOPE") {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestClient_WindowLifecycle(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))

	res, err := c.Open("/contact")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !res.OK || !res.Created || res.ID != "contact-1" {
		t.Fatalf("unexpected open result %+v", res)
	}

	if res, err := c.Move(res.ID, 40, 60); err != nil || !res.OK {
		t.Fatalf("move: %+v %v", res, err)
	}
	if res, err := c.Resize("contact-1", 640, 480); err != nil || !res.OK {
		t.Fatalf("resize: %+v %v", res, err)
	}

	state, err := c.GetState()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	w, ok := state.Window("contact-1")
	if !ok || w.Position != (geom.Point{X: 40, Y: 60}) || w.Size != (geom.Size{W: 640, H: 480}) {
		t.Fatalf("unexpected window %+v", w)
	}

	if res, err := c.ToggleMaximize("contact-1"); err != nil || !res.OK {
		t.Fatalf("maximize: %+v %v", res, err)
	}
	if res, err := c.Minimize("contact-1"); err != nil || !res.OK {
		t.Fatalf("minimize: %+v %v", res, err)
	}
	if res, err := c.Focus("contact-1"); err != nil || !res.OK {
		t.Fatalf("focus: %+v %v", res, err)
	}
	if res, err := c.Close("contact-1"); err != nil || !res.OK {
		t.Fatalf("close: %+v %v", res, err)
	}

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.DaemonRunning || status.WindowCount != 0 || status.ViewportSource != "fixed" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestClient_StaleIDIsNotAnError(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))

	res, err := c.Close("gone")
	if err != nil {
		t.Fatalf("stale id should not error: %v", err)
	}
	if res.OK {
		t.Fatalf("expected ok=false for stale id")
	}

	res, err = c.Open("/nowhere")
	if err != nil || res.OK {
		t.Fatalf("unknown route should be ok=false without error, got %+v %v", res, err)
	}
}

func TestClient_ValidationErrors(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))

	if _, err := c.Open(""); err == nil {
		t.Fatalf("expected error for empty route")
	}
	if _, err := c.Focus(""); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := c.Resize("x", 0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := c.Pointer(shell.PointerEvent{Kind: "hover"}); err == nil {
		t.Fatalf("expected error for unknown pointer kind")
	}
	if _, err := c.Key(shell.KeyEvent{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if err := c.SetViewport(0, 0); err == nil {
		t.Fatalf("expected error for empty viewport")
	}
	if _, err := c.Palette(PalettePayload{Action: "spin"}); err == nil {
		t.Fatalf("expected error for unknown palette action")
	}
}

func TestClient_PointerDragSnaps(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))
	res, _ := c.Open("/contact")

	steps := []shell.PointerEvent{
		{Kind: shell.PointerDown, Target: shell.TargetHeader, ID: res.ID, X: 150, Y: 110},
		{Kind: shell.PointerMove, X: 500, Y: 5},
		{Kind: shell.PointerUp, X: 500, Y: 5},
	}
	for _, ev := range steps {
		handled, err := c.Pointer(ev)
		if err != nil || !handled {
			t.Fatalf("pointer %s: handled=%v err=%v", ev.Kind, handled, err)
		}
	}

	state, err := c.GetState()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	w, _ := state.Window(res.ID)
	if w.Position != (geom.Point{}) || w.Size != (geom.Size{W: 1000, H: 800}) {
		t.Fatalf("expected top-edge snap to fill the viewport, got %+v", w)
	}
}

func TestClient_NavigateDarkModeViewportAndKeys(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))

	res, err := c.Navigate("/writing")
	if err != nil || !res.Created {
		t.Fatalf("navigate: %+v %v", res, err)
	}
	dark, err := c.ToggleDarkMode()
	if err != nil || !dark {
		t.Fatalf("dark mode: %v %v", dark, err)
	}
	if err := c.SetViewport(1600, 900); err != nil {
		t.Fatalf("viewport: %v", err)
	}
	handled, err := c.Key(shell.KeyEvent{Key: "/"})
	if err != nil || !handled {
		t.Fatalf("key: %v %v", handled, err)
	}

	state, err := c.GetState()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Location != "/writing" || !state.DarkMode || !state.Palette.Open || state.Viewport != (geom.Size{W: 1600, H: 900}) {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestClient_PaletteActions(t *testing.T) {
	c := pipeClient(newTestServer(t, nil))

	data, err := c.Palette(PalettePayload{Action: PaletteOpen})
	if err != nil || !data.Open || len(data.Results) != 11 {
		t.Fatalf("open: %+v %v", data, err)
	}
	data, err = c.Palette(PalettePayload{Action: PaletteQuery, Query: "trash"})
	if err != nil || len(data.Results) != 1 || data.Results[0].Route != "/trash" {
		t.Fatalf("query: %+v %v", data, err)
	}
	data, err = c.Palette(PalettePayload{Action: PaletteLaunch, Route: "/trash"})
	if err != nil || data.Open || data.Launched == nil || !data.Launched.Created {
		t.Fatalf("launch: %+v %v", data, err)
	}
	data, err = c.Palette(PalettePayload{Action: PaletteToggle})
	if err != nil || !data.Open {
		t.Fatalf("toggle: %+v %v", data, err)
	}
	data, err = c.Palette(PalettePayload{Action: PaletteClose})
	if err != nil || data.Open {
		t.Fatalf("close: %+v %v", data, err)
	}
}

func TestClient_Reload(t *testing.T) {
	calls := 0
	c := pipeClient(newTestServer(t, func() error {
		calls++
		if calls > 1 {
			return errors.New("bad yaml")
		}
		return nil
	}))

	if err := c.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	err := c.Reload()
	if err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error, got %v", err)
	}

	noReload := pipeClient(newTestServer(t, nil))
	if err := noReload.Reload(); err == nil {
		t.Fatalf("expected error when reload is unsupported")
	}
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}
