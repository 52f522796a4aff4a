package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/shell"
)

func newTestAPI(t *testing.T) (*shell.Desktop, http.Handler) {
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
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return desk, New(desk, logger).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	_, h := newTestAPI(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected healthz %d %s", rec.Code, rec.Body.String())
	}
}

func TestOpenAndWindowActions(t *testing.T) {
	_, h := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/api/open", `{"route":"/contact"}`)
	res := decodeBody[shell.Result](t, rec)
	if rec.Code != http.StatusOK || !res.OK || res.ID != "contact-1" {
		t.Fatalf("unexpected open %d %+v", rec.Code, res)
	}

	rec = do(t, h, http.MethodPut, "/api/windows/contact-1/position", `{"x":12,"y":34}`)
	if res := decodeBody[shell.Result](t, rec); !res.OK {
		t.Fatalf("move failed: %s", rec.Body.String())
	}
	rec = do(t, h, http.MethodPut, "/api/windows/contact-1/size", `{"w":700,"h":500}`)
	if res := decodeBody[shell.Result](t, rec); !res.OK {
		t.Fatalf("resize failed: %s", rec.Body.String())
	}

	for _, action := range []string{"maximize", "minimize", "focus", "close"} {
		rec = do(t, h, http.MethodPost, "/api/windows/contact-1/"+action, "")
		if res := decodeBody[shell.Result](t, rec); rec.Code != http.StatusOK || !res.OK {
			t.Fatalf("%s failed: %d %s", action, rec.Code, rec.Body.String())
		}
	}

	state := decodeBody[shell.State](t, do(t, h, http.MethodGet, "/api/state", ""))
	if len(state.Windows) != 0 {
		t.Fatalf("expected window closed, got %+v", state.Windows)
	}
}

func TestWindowActions_StaleIDIsOKFalse(t *testing.T) {
	_, h := newTestAPI(t)
	rec := do(t, h, http.MethodPost, "/api/windows/gone/focus", "")
	res := decodeBody[shell.Result](t, rec)
	if rec.Code != http.StatusOK || res.OK {
		t.Fatalf("expected 200 ok=false, got %d %+v", rec.Code, res)
	}

	rec = do(t, h, http.MethodGet, "/api/windows/gone/content", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for stale content, got %d", rec.Code)
	}
}

func TestBadRequests(t *testing.T) {
	_, h := newTestAPI(t)
	tests := []struct {
		method, path, body string
		code               int
	}{
		{http.MethodPost, "/api/open", `{"route":""}`, http.StatusBadRequest},
		{http.MethodPost, "/api/open", `{not json`, http.StatusBadRequest},
		{http.MethodPut, "/api/windows/x/size", `{"w":0,"h":10}`, http.StatusBadRequest},
		{http.MethodPost, "/api/windows/x/explode", ``, http.StatusNotFound},
		{http.MethodPost, "/api/pointer", `{"kind":"hover"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/keys", `{}`, http.StatusBadRequest},
		{http.MethodPut, "/api/viewport", `{"width":0,"height":0}`, http.StatusBadRequest},
		{http.MethodPost, "/api/palette/spin", ``, http.StatusNotFound},
		{http.MethodPost, "/api/palette/launch", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/context-menu/action", `{"action":"refresh"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body)
		if rec.Code != tt.code {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tt.method, tt.path, tt.code, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%s %s: expected error body, got %s", tt.method, tt.path, rec.Body.String())
		}
	}
}

func TestMissingBodyIsRejected(t *testing.T) {
	desk, h := newTestAPI(t)
	id := desk.Open("/contact").ID
	before := desk.Snapshot().Windows[0].Position

	rec := do(t, h, http.MethodPut, "/api/windows/"+id+"/position", "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "request body is required") {
		t.Fatalf("expected 400 for bodiless move, got %d %s", rec.Code, rec.Body.String())
	}
	if got := desk.Snapshot().Windows[0].Position; got != before {
		t.Fatalf("bodiless move must not touch the window: %+v -> %+v", before, got)
	}

	rec = do(t, h, http.MethodPost, "/api/context-menu", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bodiless context menu, got %d", rec.Code)
	}
	if desk.Snapshot().ContextMenu != nil {
		t.Fatalf("bodiless request must not open the context menu")
	}

	for _, path := range []string{"/api/open", "/api/navigate", "/api/pointer", "/api/keys", "/api/context-menu/action"} {
		if rec := do(t, h, http.MethodPost, path, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s without body: got %d, want 400", path, rec.Code)
		}
	}
}

func TestContentAndApps(t *testing.T) {
	_, h := newTestAPI(t)
	do(t, h, http.MethodPost, "/api/open", `{"route":"/about"}`)

	rec := do(t, h, http.MethodGet, "/api/windows/about-1/content", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"/about"`) {
		t.Fatalf("unexpected content %d %s", rec.Code, rec.Body.String())
	}

	apps := decodeBody[[]catalog.App](t, do(t, h, http.MethodGet, "/api/apps", ""))
	if len(apps) != 11 || apps[0].Route != "/about" {
		t.Fatalf("unexpected apps %+v", apps)
	}
}

func TestPointerDragAndNavigate(t *testing.T) {
	desk, h := newTestAPI(t)
	res := desk.Open("/contact")

	do(t, h, http.MethodPost, "/api/pointer", fmt.Sprintf(`{"kind":"down","target":"header","id":%q,"x":150,"y":110}`, res.ID))
	do(t, h, http.MethodPost, "/api/pointer", `{"kind":"move","x":5,"y":400}`)
	state := decodeBody[shell.State](t, do(t, h, http.MethodGet, "/api/state", ""))
	if state.Gesture.SnapEdge != "left" || state.Transitions {
		t.Fatalf("expected left snap preview mid-drag, got %+v", state.Gesture)
	}
	do(t, h, http.MethodPost, "/api/pointer", `{"kind":"up","x":5,"y":400}`)

	w, _ := desk.Snapshot().Window(res.ID)
	if w.Position != (geom.Point{}) || w.Size != (geom.Size{W: 500, H: 800}) {
		t.Fatalf("expected left half, got %+v", w)
	}

	rec := do(t, h, http.MethodPost, "/api/navigate", `{"route":"/music"}`)
	if nav := decodeBody[shell.Result](t, rec); !nav.Created {
		t.Fatalf("expected navigate to open music, got %+v", nav)
	}
}

func TestShellToggles(t *testing.T) {
	desk, h := newTestAPI(t)

	dark := decodeBody[map[string]bool](t, do(t, h, http.MethodPost, "/api/dark-mode", ""))
	if !dark["dark_mode"] {
		t.Fatalf("expected dark mode on")
	}

	size := decodeBody[geom.Size](t, do(t, h, http.MethodPut, "/api/viewport", `{"width":1440,"height":900}`))
	if size != (geom.Size{W: 1440, H: 900}) {
		t.Fatalf("unexpected viewport %+v", size)
	}

	handled := decodeBody[map[string]bool](t, do(t, h, http.MethodPost, "/api/keys", `{"key":"k","meta":true}`))
	if !handled["handled"] || !desk.Snapshot().Palette.Open {
		t.Fatalf("meta+k should open the palette")
	}

	view := decodeBody[shell.PaletteView](t, do(t, h, http.MethodPost, "/api/palette/close", ""))
	if view.Open {
		t.Fatalf("expected palette closed")
	}
	view = decodeBody[shell.PaletteView](t, do(t, h, http.MethodPost, "/api/palette/toggle", ""))
	if !view.Open {
		t.Fatalf("expected palette open after toggle")
	}
}

func TestPaletteSearchAndLaunch(t *testing.T) {
	desk, h := newTestAPI(t)
	do(t, h, http.MethodPost, "/api/palette/open", "")

	rec := do(t, h, http.MethodGet, "/api/palette?q=music", "")
	if !strings.Contains(rec.Body.String(), `"/music"`) {
		t.Fatalf("expected music in results, got %s", rec.Body.String())
	}

	res := decodeBody[shell.Result](t, do(t, h, http.MethodPost, "/api/palette/launch", `{"route":"/music"}`))
	if !res.Created {
		t.Fatalf("expected launch to open music, got %+v", res)
	}
	if desk.Snapshot().Palette.Open {
		t.Fatalf("launch should close the palette")
	}
}

func TestContextMenu(t *testing.T) {
	desk, h := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/api/context-menu", `{"x":20,"y":30}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Refresh Desktop") {
		t.Fatalf("unexpected menu %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/api/context-menu", "")
	if rec.Code != http.StatusNoContent || desk.Snapshot().ContextMenu != nil {
		t.Fatalf("expected menu closed")
	}

	do(t, h, http.MethodPost, "/api/context-menu", `{"x":0,"y":0}`)
	state := decodeBody[shell.State](t, do(t, h, http.MethodPost, "/api/context-menu/action", `{"action":"new-window"}`))
	if len(state.Windows) != 1 || state.Windows[0].Route != "/about" {
		t.Fatalf("expected new window at /about, got %+v", state.Windows)
	}
}

func TestEvents_StreamsSnapshots(t *testing.T) {
	desk, h := newTestAPI(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	if len(first.Windows) != 0 {
		t.Fatalf("expected empty initial snapshot")
	}

	desk.Open("/about")
	next := readEvent(t, reader)
	if len(next.Windows) != 1 || next.Version <= first.Version {
		t.Fatalf("expected snapshot with one window, got %+v", next)
	}
}

func readEvent(t *testing.T, r *bufio.Reader) shell.State {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var s shell.State
			if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &s); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			return s
		}
	}
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	_, h := newTestAPI(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := NewServer(ServerConfig{Handler: h, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
