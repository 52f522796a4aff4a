package daemon

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/webdesk/internal/ipc"
)

const baseConfig = `viewport:
  source: fixed
  width: 1000
  height: 800
http:
  enabled: false
`

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func newTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, baseConfig)

	d, err := New(Options{
		ConfigPath: cfgPath,
		SocketPath: filepath.Join(dir, "d.sock"),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, cfgPath
}

func TestNewStartsDesktopFromConfig(t *testing.T) {
	d, _ := newTestDaemon(t)

	state := d.Desktop().Snapshot()
	if state.Viewport.W != 1000 || state.Viewport.H != 800 {
		t.Fatalf("unexpected viewport %+v", state.Viewport)
	}
	if len(state.Windows) != 1 || state.Windows[0].Route != "/about" {
		t.Fatalf("expected the startup window, got %+v", state.Windows)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, "snap_threshold: 0\n")

	_, err := New(Options{ConfigPath: cfgPath, SocketPath: filepath.Join(dir, "d.sock"), Logger: discardLogger()})
	if err == nil || !strings.Contains(err.Error(), "snap_threshold") {
		t.Fatalf("expected snap_threshold validation error, got %v", err)
	}
}

func TestReloadAppliesTunables(t *testing.T) {
	d, cfgPath := newTestDaemon(t)

	writeConfig(t, cfgPath, baseConfig+"snap_threshold: 50\n")
	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := d.Config().SnapThreshold; got != 50 {
		t.Fatalf("SnapThreshold = %d, want 50", got)
	}
	if len(d.Desktop().Snapshot().Windows) != 1 {
		t.Fatalf("reload must keep live windows")
	}
}

func TestReloadWarnsOnlyWhenCatalogChanges(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	apps := func(title string) string {
		return baseConfig + "startup_route: /notes\napps:\n  - id: notes\n    title: " + title + "\n    route: /notes\n    default_size:\n      width: 420\n      height: 360\n"
	}
	writeConfig(t, cfgPath, apps("Notes.app"))

	var logs bytes.Buffer
	d, err := New(Options{
		ConfigPath: cfgPath,
		SocketPath: filepath.Join(dir, "d.sock"),
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if strings.Contains(logs.String(), "app catalog changes") {
		t.Fatalf("unchanged catalog must not warn:\n%s", logs.String())
	}

	writeConfig(t, cfgPath, apps("Scratch.app"))
	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !strings.Contains(logs.String(), "app catalog changes take effect after restart") {
		t.Fatalf("expected a restart warning for the edited catalog:\n%s", logs.String())
	}
}

func TestReloadFailureKeepsConfig(t *testing.T) {
	d, cfgPath := newTestDaemon(t)

	writeConfig(t, cfgPath, "bogus_key: true\n")
	if err := d.Reload(); err == nil {
		t.Fatalf("expected reload error for unknown key")
	}
	if got := d.Config().SnapThreshold; got != 20 {
		t.Fatalf("SnapThreshold = %d, want previous 20", got)
	}
}

func TestRunServesIPCUntilCancelled(t *testing.T) {
	d, _ := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	client := ipc.NewClientWithSocket(d.socketPath)
	var status *ipc.StatusData
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var err error
		if status, err = client.GetStatus(); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status == nil {
		t.Fatalf("daemon never answered on %s", d.socketPath)
	}
	if !status.DaemonRunning || status.WindowCount != 1 || status.ViewportSource != "fixed" || status.HTTPListen != "" {
		t.Fatalf("unexpected status %+v", status)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload over ipc: %v", err)
	}

	second, _ := newTestDaemon(t)
	second.socketPath = d.socketPath
	if err := second.Run(ctx); err == nil || !strings.Contains(err.Error(), "already listening") {
		t.Fatalf("expected already-running error, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
