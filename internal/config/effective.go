package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// BuildEffectiveConfig lays raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if v := raw.Viewport; v != nil {
		if v.Source != nil {
			cfg.Viewport.Source = strings.ToLower(strings.TrimSpace(*v.Source))
		}
		cfg.Viewport.Width = derefInt(v.Width, cfg.Viewport.Width)
		cfg.Viewport.Height = derefInt(v.Height, cfg.Viewport.Height)
	}
	cfg.SnapThreshold = derefInt(raw.SnapThreshold, cfg.SnapThreshold)
	if s := raw.MinWindow; s != nil {
		cfg.MinWindow.W = derefInt(s.Width, cfg.MinWindow.W)
		cfg.MinWindow.H = derefInt(s.Height, cfg.MinWindow.H)
	}
	if c := raw.Cascade; c != nil {
		cfg.Cascade.OriginX = derefInt(c.OriginX, cfg.Cascade.OriginX)
		cfg.Cascade.OriginY = derefInt(c.OriginY, cfg.Cascade.OriginY)
		cfg.Cascade.Step = derefInt(c.Step, cfg.Cascade.Step)
	}
	if s := raw.DefaultWindow; s != nil {
		cfg.DefaultWindow.W = derefInt(s.Width, cfg.DefaultWindow.W)
		cfg.DefaultWindow.H = derefInt(s.Height, cfg.DefaultWindow.H)
	}
	cfg.ZBase = derefInt(raw.ZBase, cfg.ZBase)
	if raw.HomeRoute != nil {
		cfg.HomeRoute = strings.TrimSpace(*raw.HomeRoute)
	}
	if raw.StartupRoute != nil {
		cfg.StartupRoute = strings.TrimSpace(*raw.StartupRoute)
	}
	cfg.ToastSeconds = derefInt(raw.ToastSeconds, cfg.ToastSeconds)
	if raw.PaletteFuzzyMatching != nil {
		cfg.PaletteFuzzyMatching = *raw.PaletteFuzzyMatching
	}
	if h := raw.HTTP; h != nil {
		if h.Enabled != nil {
			cfg.HTTP.Enabled = *h.Enabled
		}
		if h.Listen != nil {
			cfg.HTTP.Listen = strings.TrimSpace(*h.Listen)
		}
	}
	if h := raw.Hotkeys; h != nil {
		cfg.Hotkeys.Palette = derefString(h.Palette, cfg.Hotkeys.Palette)
		cfg.Hotkeys.DarkMode = derefString(h.DarkMode, cfg.Hotkeys.DarkMode)
		cfg.Hotkeys.Home = derefString(h.Home, cfg.Hotkeys.Home)
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warning" {
			cfg.LogLevel = "warn"
		}
	}
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
	}
	if raw.Apps != nil {
		cfg.Apps = append(cfg.Apps[:0], raw.Apps...)
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}
