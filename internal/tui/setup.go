package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/platform"
)

// setupValues are the form-bound strings; huh inputs edit text, so
// numbers are converted on submit.
type setupValues struct {
	viewportSource string
	width          string
	height         string
	snapThreshold  string
	httpEnabled    bool
	httpListen     string
	paletteHotkey  string
	logLevel       string
}

func valuesFromConfig(cfg *config.Config) setupValues {
	return setupValues{
		viewportSource: cfg.Viewport.Source,
		width:          strconv.Itoa(cfg.Viewport.Width),
		height:         strconv.Itoa(cfg.Viewport.Height),
		snapThreshold:  strconv.Itoa(cfg.SnapThreshold),
		httpEnabled:    cfg.HTTP.Enabled,
		httpListen:     cfg.HTTP.Listen,
		paletteHotkey:  cfg.Hotkeys.Palette,
		logLevel:       cfg.LogLevel,
	}
}

// apply writes v onto a copy of base and validates the result.
func (v setupValues) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	var err error

	cfg.Viewport.Source = v.viewportSource
	if cfg.Viewport.Width, err = positiveInt("viewport width", v.width); err != nil {
		return nil, err
	}
	if cfg.Viewport.Height, err = positiveInt("viewport height", v.height); err != nil {
		return nil, err
	}
	if cfg.SnapThreshold, err = positiveInt("snap threshold", v.snapThreshold); err != nil {
		return nil, err
	}
	cfg.HTTP.Enabled = v.httpEnabled
	cfg.HTTP.Listen = strings.TrimSpace(v.httpListen)
	cfg.Hotkeys.Palette = strings.TrimSpace(v.paletteHotkey)
	cfg.LogLevel = v.logLevel

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func validatePositive(name string) func(string) error {
	return func(s string) error {
		_, err := positiveInt(name, s)
		return err
	}
}

func (v *setupValues) form() *huh.Form {
	sources := []huh.Option[string]{
		huh.NewOption("fixed size", string(platform.SourceFixed)),
		huh.NewOption("X11 monitor work area", string(platform.SourceX11)),
	}
	levels := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warn", "warn"),
		huh.NewOption("error", "error"),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("viewport_source").
				Title("Viewport Source").
				Description("Where the desktop takes its size from").
				Options(sources...).
				Value(&v.viewportSource),
			huh.NewInput().
				Key("viewport_width").
				Title("Viewport Width").
				Description("Fixed width, and the fallback when X11 is unreachable").
				Validate(validatePositive("viewport width")).
				Value(&v.width),
			huh.NewInput().
				Key("viewport_height").
				Title("Viewport Height").
				Validate(validatePositive("viewport height")).
				Value(&v.height),
			huh.NewInput().
				Key("snap_threshold").
				Title("Snap Threshold").
				Description("Pixels from an edge that trigger a snap").
				Validate(validatePositive("snap threshold")).
				Value(&v.snapThreshold),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("http_enabled").
				Title("Serve the browser API?").
				Value(&v.httpEnabled),
			huh.NewInput().
				Key("http_listen").
				Title("HTTP Listen Address").
				Value(&v.httpListen),
			huh.NewInput().
				Key("palette_hotkey").
				Title("Palette Hotkey").
				Description("Global X11 key sequence, e.g. Mod4-space (empty disables)").
				Value(&v.paletteHotkey),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levels...).
				Value(&v.logLevel),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// RunSetup asks for the common settings and writes a config file to path.
// An existing file is only replaced when overwrite is set.
func RunSetup(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --force to replace it)", path)
	}

	base := config.DefaultConfig()
	values := valuesFromConfig(base)
	if err := values.form().Run(); err != nil {
		return err
	}

	cfg, err := values.apply(base)
	if err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

func writeConfig(path string, cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
