package config

import (
	"fmt"

	"github.com/1broseidon/webdesk/internal/catalog"
	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawViewport struct {
	Source *string `yaml:"source"`
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawCascade struct {
	OriginX *int `yaml:"origin_x"`
	OriginY *int `yaml:"origin_y"`
	Step    *int `yaml:"step"`
}

type RawHTTP struct {
	Enabled *bool   `yaml:"enabled"`
	Listen  *string `yaml:"listen"`
}

type RawHotkeys struct {
	Palette  *string `yaml:"palette"`
	DarkMode *string `yaml:"dark_mode"`
	Home     *string `yaml:"home"`
}

// RawConfig is one file as written: nil fields were not set and fall
// through to includes and defaults.
type RawConfig struct {
	Include              IncludeList   `yaml:"include"`
	Viewport             *RawViewport  `yaml:"viewport"`
	SnapThreshold        *int          `yaml:"snap_threshold"`
	MinWindow            *RawSize      `yaml:"min_window"`
	Cascade              *RawCascade   `yaml:"cascade"`
	DefaultWindow        *RawSize      `yaml:"default_window"`
	ZBase                *int          `yaml:"z_base"`
	HomeRoute            *string       `yaml:"home_route"`
	StartupRoute         *string       `yaml:"startup_route"`
	ToastSeconds         *int          `yaml:"toast_seconds"`
	PaletteFuzzyMatching *bool         `yaml:"palette_fuzzy_matching"`
	HTTP                 *RawHTTP      `yaml:"http"`
	Hotkeys              *RawHotkeys   `yaml:"hotkeys"`
	LogLevel             *string       `yaml:"log_level"`
	LogFile              *string       `yaml:"log_file"`
	Apps                 []catalog.App `yaml:"apps"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Viewport != nil {
		out.Viewport = mergeRawViewport(c.Viewport, overlay.Viewport)
	}
	if overlay.SnapThreshold != nil {
		out.SnapThreshold = overlay.SnapThreshold
	}
	if overlay.MinWindow != nil {
		out.MinWindow = mergeRawSize(c.MinWindow, overlay.MinWindow)
	}
	if overlay.Cascade != nil {
		out.Cascade = mergeRawCascade(c.Cascade, overlay.Cascade)
	}
	if overlay.DefaultWindow != nil {
		out.DefaultWindow = mergeRawSize(c.DefaultWindow, overlay.DefaultWindow)
	}
	if overlay.ZBase != nil {
		out.ZBase = overlay.ZBase
	}
	if overlay.HomeRoute != nil {
		out.HomeRoute = overlay.HomeRoute
	}
	if overlay.StartupRoute != nil {
		out.StartupRoute = overlay.StartupRoute
	}
	if overlay.ToastSeconds != nil {
		out.ToastSeconds = overlay.ToastSeconds
	}
	if overlay.PaletteFuzzyMatching != nil {
		out.PaletteFuzzyMatching = overlay.PaletteFuzzyMatching
	}
	if overlay.HTTP != nil {
		out.HTTP = mergeRawHTTP(c.HTTP, overlay.HTTP)
	}
	if overlay.Hotkeys != nil {
		out.Hotkeys = mergeRawHotkeys(c.Hotkeys, overlay.Hotkeys)
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != nil {
		out.LogFile = overlay.LogFile
	}
	// Apps replace wholesale; merging catalogs entry by entry would make
	// order ambiguous.
	if overlay.Apps != nil {
		out.Apps = append([]catalog.App(nil), overlay.Apps...)
	}

	return out
}

func mergeRawViewport(base, overlay *RawViewport) *RawViewport {
	out := RawViewport{}
	if base != nil {
		out = *base
	}
	if overlay.Source != nil {
		out.Source = overlay.Source
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}

func mergeRawSize(base, overlay *RawSize) *RawSize {
	out := RawSize{}
	if base != nil {
		out = *base
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}

func mergeRawCascade(base, overlay *RawCascade) *RawCascade {
	out := RawCascade{}
	if base != nil {
		out = *base
	}
	if overlay.OriginX != nil {
		out.OriginX = overlay.OriginX
	}
	if overlay.OriginY != nil {
		out.OriginY = overlay.OriginY
	}
	if overlay.Step != nil {
		out.Step = overlay.Step
	}
	return &out
}

func mergeRawHTTP(base, overlay *RawHTTP) *RawHTTP {
	out := RawHTTP{}
	if base != nil {
		out = *base
	}
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Listen != nil {
		out.Listen = overlay.Listen
	}
	return &out
}

func mergeRawHotkeys(base, overlay *RawHotkeys) *RawHotkeys {
	out := RawHotkeys{}
	if base != nil {
		out = *base
	}
	if overlay.Palette != nil {
		out.Palette = overlay.Palette
	}
	if overlay.DarkMode != nil {
		out.DarkMode = overlay.DarkMode
	}
	if overlay.Home != nil {
		out.Home = overlay.Home
	}
	return &out
}
