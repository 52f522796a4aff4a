package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/shell"
	"github.com/1broseidon/webdesk/internal/wm"
	"gopkg.in/yaml.v3"
)

// ErrInvalid matches every validation failure via errors.Is.
var ErrInvalid = errors.New("invalid config")

// Viewport selects where the desktop size comes from.
type Viewport struct {
	Source string `yaml:"source"` // fixed or x11
	Width  int    `yaml:"width"`  // fixed size, also the x11 fallback
	Height int    `yaml:"height"`
}

// Cascade staggers newly opened windows.
type Cascade struct {
	OriginX int `yaml:"origin_x"`
	OriginY int `yaml:"origin_y"`
	Step    int `yaml:"step"`
}

// HTTP configures the browser-facing API.
type HTTP struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Hotkeys are global X11 key sequences, e.g. "Mod4-space". Empty disables
// a binding. They only apply with the x11 viewport source.
type Hotkeys struct {
	Palette  string `yaml:"palette"`
	DarkMode string `yaml:"dark_mode"`
	Home     string `yaml:"home"`
}

// Any reports whether at least one hotkey is bound.
func (h Hotkeys) Any() bool {
	return h.Palette != "" || h.DarkMode != "" || h.Home != ""
}

const (
	DefaultHTTPListen   = "127.0.0.1:7420"
	DefaultToastSeconds = 4
	DefaultLogLevel     = "info"
)

// Config holds the application configuration.
type Config struct {
	Viewport             Viewport      `yaml:"viewport"`
	SnapThreshold        int           `yaml:"snap_threshold"`
	MinWindow            geom.Size     `yaml:"min_window"`
	Cascade              Cascade       `yaml:"cascade"`
	DefaultWindow        geom.Size     `yaml:"default_window"`
	ZBase                int           `yaml:"z_base"`
	HomeRoute            string        `yaml:"home_route"`
	StartupRoute         string        `yaml:"startup_route"`
	ToastSeconds         int           `yaml:"toast_seconds"`
	PaletteFuzzyMatching bool          `yaml:"palette_fuzzy_matching"`
	HTTP                 HTTP          `yaml:"http"`
	Hotkeys              Hotkeys       `yaml:"hotkeys"`
	LogLevel             string        `yaml:"log_level"`
	LogFile              string        `yaml:"log_file,omitempty"` // also log JSON here, rotated by size
	Apps                 []catalog.App `yaml:"apps"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: Viewport{
			Source: string(platform.SourceFixed),
			Width:  shell.DefaultViewport.W,
			Height: shell.DefaultViewport.H,
		},
		SnapThreshold: 20,
		MinWindow:     geom.Size{W: 300, H: 200},
		Cascade: Cascade{
			OriginX: wm.DefaultCascadeXY,
			OriginY: wm.DefaultCascadeXY,
			Step:    wm.DefaultCascadeGap,
		},
		DefaultWindow:        wm.DefaultWindowSize,
		ZBase:                wm.DefaultZBase,
		HomeRoute:            "/",
		StartupRoute:         shell.DefaultStartupRoute,
		ToastSeconds:         DefaultToastSeconds,
		PaletteFuzzyMatching: true,
		HTTP:                 HTTP{Enabled: true, Listen: DefaultHTTPListen},
		LogLevel:             DefaultLogLevel,
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := platform.ParseSource(c.Viewport.Source); err != nil {
		return &ValidationError{Path: "viewport.source", Err: err}
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return &ValidationError{Path: "viewport", Err: fmt.Errorf("viewport width and height must be > 0")}
	}
	if c.SnapThreshold < 1 {
		return &ValidationError{Path: "snap_threshold", Err: fmt.Errorf("snap_threshold must be >= 1")}
	}
	if c.MinWindow.W <= 0 || c.MinWindow.H <= 0 {
		return &ValidationError{Path: "min_window", Err: fmt.Errorf("min_window width and height must be > 0")}
	}
	if c.Cascade.OriginX < 0 || c.Cascade.OriginY < 0 || c.Cascade.Step < 0 {
		return &ValidationError{Path: "cascade", Err: fmt.Errorf("cascade values must be >= 0")}
	}
	if c.DefaultWindow.W <= 0 || c.DefaultWindow.H <= 0 {
		return &ValidationError{Path: "default_window", Err: fmt.Errorf("default_window width and height must be > 0")}
	}
	if c.ZBase < 1 {
		return &ValidationError{Path: "z_base", Err: fmt.Errorf("z_base must be >= 1")}
	}
	if !strings.HasPrefix(c.HomeRoute, "/") {
		return &ValidationError{Path: "home_route", Err: fmt.Errorf("home_route must start with '/'")}
	}
	if c.StartupRoute != "" && !strings.HasPrefix(c.StartupRoute, "/") {
		return &ValidationError{Path: "startup_route", Err: fmt.Errorf("startup_route must be empty or start with '/'")}
	}
	if c.ToastSeconds <= 0 {
		return &ValidationError{Path: "toast_seconds", Err: fmt.Errorf("toast_seconds must be > 0")}
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Listen) == "" {
		return &ValidationError{Path: "http.listen", Err: fmt.Errorf("http.listen is required when http is enabled")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if len(c.Apps) > 0 {
		if _, err := catalog.New(c.Apps); err != nil {
			return &ValidationError{Path: "apps", Err: err}
		}
	}
	return nil
}

// ViewportSize is the configured fixed size.
func (c *Config) ViewportSize() geom.Size {
	return geom.Size{W: c.Viewport.Width, H: c.Viewport.Height}
}

// ViewportSource is the parsed viewport backend. Validate has already
// rejected unknown names.
func (c *Config) ViewportSource() platform.Source {
	src, err := platform.ParseSource(c.Viewport.Source)
	if err != nil {
		return platform.SourceFixed
	}
	return src
}

// Tunables converts the config into the desktop's runtime settings.
func (c *Config) Tunables() shell.Tunables {
	return shell.Tunables{
		SnapThreshold: c.SnapThreshold,
		MinWindow:     c.MinWindow,
		Cascade: wm.Cascade{
			Origin: geom.Point{X: c.Cascade.OriginX, Y: c.Cascade.OriginY},
			Step:   c.Cascade.Step,
		},
		DefaultWindow: c.DefaultWindow,
		ZBase:         c.ZBase,
		HomeRoute:     c.HomeRoute,
		StartupRoute:  c.StartupRoute,
		ToastDuration: time.Duration(c.ToastSeconds) * time.Second,
		FuzzyPalette:  c.PaletteFuzzyMatching,
	}
}

// Catalog returns the configured apps, or the builtin catalog when the
// config lists none.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Apps) == 0 {
		return catalog.Builtin(), nil
	}
	return catalog.New(c.Apps)
}

// Marshal renders the effective config as YAML.
//
// Comments and include structure from the original files are not preserved.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
