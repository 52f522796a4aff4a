package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/platform"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func appWithRoute(id, route string) catalog.App {
	return catalog.App{ID: id, Route: route}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ViewportSource() != platform.SourceFixed {
		t.Fatalf("expected fixed viewport by default")
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/webdesk.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/etc/webdesk.yaml" {
		t.Fatalf("expected env override, got %q", path)
	}

	t.Setenv(EnvConfigPath, "")
	path, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".config", "webdesk", "config.yaml")) {
		t.Fatalf("unexpected default path %q", path)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapThreshold != 20 || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got threshold=%d files=%v", res.Config.SnapThreshold, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.StartupRoute != "/about" {
		t.Fatalf("expected startup_route /about, got %q", res.Config.StartupRoute)
	}
}

func TestLoadFromPath_PartialSectionsKeepDefaults(t *testing.T) {
	data := strings.Join([]string{
		"viewport:",
		"  width: 1920",
		"min_window:",
		"  height: 250",
		"cascade:",
		"  step: 40",
		"http:",
		"  listen: \":9000\"",
		"log_level: WARNING",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.ViewportSize() != (geom.Size{W: 1920, H: 800}) {
		t.Fatalf("unexpected viewport %+v", cfg.ViewportSize())
	}
	if cfg.MinWindow != (geom.Size{W: 300, H: 250}) {
		t.Fatalf("unexpected min_window %+v", cfg.MinWindow)
	}
	if cfg.Cascade != (Cascade{OriginX: 100, OriginY: 100, Step: 40}) {
		t.Fatalf("unexpected cascade %+v", cfg.Cascade)
	}
	if !cfg.HTTP.Enabled || cfg.HTTP.Listen != ":9000" {
		t.Fatalf("unexpected http %+v", cfg.HTTP)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected warning to normalize to warn, got %q", cfg.LogLevel)
	}
}

func TestLoadFromPath_DisableStartupAndFuzzy(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "startup_route: \"\"\npalette_fuzzy_matching: false\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.StartupRoute != "" || res.Config.PaletteFuzzyMatching {
		t.Fatalf("expected startup disabled and substring palette, got %+v", res.Config)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "log_level: info\nsnap_threshold: 0\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "snap_threshold" {
		t.Fatalf("expected snap_threshold validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected file:line prefix, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"viewport source", func(c *Config) { c.Viewport.Source = "wayland" }, "viewport.source"},
		{"viewport size", func(c *Config) { c.Viewport.Width = 0 }, "viewport"},
		{"min window", func(c *Config) { c.MinWindow.H = -1 }, "min_window"},
		{"cascade", func(c *Config) { c.Cascade.Step = -5 }, "cascade"},
		{"default window", func(c *Config) { c.DefaultWindow.W = 0 }, "default_window"},
		{"z base", func(c *Config) { c.ZBase = 0 }, "z_base"},
		{"home route", func(c *Config) { c.HomeRoute = "home" }, "home_route"},
		{"startup route", func(c *Config) { c.StartupRoute = "about" }, "startup_route"},
		{"toast", func(c *Config) { c.ToastSeconds = 0 }, "toast_seconds"},
		{"http listen", func(c *Config) { c.HTTP.Listen = " " }, "http.listen"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"apps", func(c *Config) { c.Apps = append(c.Apps, appWithRoute("x", "nope")) }, "apps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestValidate_HTTPDisabledNeedsNoListen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP = HTTP{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled http to validate, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, configD, "10-base.yaml", "snap_threshold: 5\ntoast_seconds: 9\n")
	writeConfig(t, configD, "20-override.yaml", "snap_threshold: 6\n")
	writeConfig(t, configD, "notes.txt", "snap_threshold: nonsense\n")

	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"snap_threshold: 7",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.SnapThreshold != 7 {
		t.Fatalf("expected snap_threshold 7, got %d", res.Config.SnapThreshold)
	}
	if res.Config.ToastSeconds != 9 {
		t.Fatalf("expected included toast_seconds 9, got %d", res.Config.ToastSeconds)
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes then main file, got %v", res.Files)
	}
}

func TestLoadFromPath_HotkeysAndLogFileMergeAcrossIncludes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "keys.yaml", "hotkeys:\n  palette: Mod4-space\n  dark_mode: Mod4-d\n")
	main := strings.Join([]string{
		"include:",
		"  - keys.yaml",
		"hotkeys:",
		"  dark_mode: ''",
		"log_file: ' /tmp/webdesk.log '",
		"",
	}, "\n")
	path := writeConfig(t, dir, "config.yaml", main)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := res.Config.Hotkeys
	if got.Palette != "Mod4-space" || got.DarkMode != "" || got.Home != "" {
		t.Fatalf("unexpected hotkeys %+v", got)
	}
	if !got.Any() {
		t.Fatalf("Any() = false with a palette binding")
	}
	if res.Config.LogFile != "/tmp/webdesk.log" {
		t.Fatalf("LogFile = %q", res.Config.LogFile)
	}
	if DefaultConfig().Hotkeys.Any() {
		t.Fatalf("hotkeys must be unbound by default")
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_AppsReplaceBuiltinCatalog(t *testing.T) {
	data := strings.Join([]string{
		"apps:",
		"  - id: notes",
		"    title: Notes.app",
		"    route: /notes",
		"    icon: pen",
		"    chrome_style: wood",
		"    default_size:",
		"      width: 420",
		"      height: 360",
		"  - id: blog",
		"    route: /blog",
		"",
	}, "\n")
	path := writeConfig(t, t.TempDir(), "config.yaml", data)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cat, err := res.Config.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 apps, got %d", cat.Len())
	}
	notes, ok := cat.Lookup("/notes")
	if !ok || notes.DefaultSize == nil || *notes.DefaultSize != (geom.Size{W: 420, H: 360}) {
		t.Fatalf("unexpected notes app %+v", notes)
	}
	if _, ok := cat.Lookup("/about"); ok {
		t.Fatalf("configured apps should replace the builtin list")
	}
}

func TestCatalog_DefaultsToBuiltin(t *testing.T) {
	cat, err := DefaultConfig().Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if _, ok := cat.Lookup("/about"); !ok {
		t.Fatalf("expected builtin catalog")
	}
}

func TestTunables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapThreshold = 32
	cfg.Cascade = Cascade{OriginX: 10, OriginY: 20, Step: 5}
	cfg.ToastSeconds = 2
	cfg.PaletteFuzzyMatching = false

	tun := cfg.Tunables()
	if tun.SnapThreshold != 32 || tun.ToastDuration != 2*time.Second || tun.FuzzyPalette {
		t.Fatalf("unexpected tunables %+v", tun)
	}
	if tun.Cascade.Origin != (geom.Point{X: 10, Y: 20}) || tun.Cascade.Step != 5 {
		t.Fatalf("unexpected cascade %+v", tun.Cascade)
	}
	if tun.ZBase != 10 || tun.StartupRoute != "/about" || tun.HomeRoute != "/" {
		t.Fatalf("unexpected routes or z base %+v", tun)
	}
}

func TestExplain_FileAndDefaultSources(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "cascade:\n  step: 45\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "cascade.step")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 45 {
		t.Fatalf("expected 45, got %#v", val)
	}
	if src.Kind != SourceFile || filepath.Base(src.File) != "config.yaml" || src.Line != 2 {
		t.Fatalf("expected file source at line 2, got %#v", src)
	}

	val, src, err = Explain(res, "snap_threshold")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 20 || src.Kind != SourceDefault {
		t.Fatalf("expected default 20, got %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "cascade.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "snap_threshold.deeper"); err == nil {
		t.Fatalf("expected error descending into a scalar")
	}
}

func TestMarshal_RoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapThreshold = 25
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := writeConfig(t, t.TempDir(), "config.yaml", string(data))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("printed config should load strictly: %v", err)
	}
	if res.Config.SnapThreshold != 25 {
		t.Fatalf("expected 25, got %d", res.Config.SnapThreshold)
	}
}
