package mcp

import (
	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/palette"
)

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	IncludeMinimized *bool `json:"include_minimized,omitempty" jsonschema:"Include minimized windows (default: true)"`
}

// WindowInfo describes a single window.
type WindowInfo struct {
	ID        string     `json:"id"`
	Route     string     `json:"route"`
	Title     string     `json:"title"`
	Position  geom.Point `json:"position"`
	Size      geom.Size  `json:"size"`
	ZIndex    int        `json:"z_index"`
	Minimized bool       `json:"minimized"`
	Maximized bool       `json:"maximized"`
	Focused   bool       `json:"focused"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Location  string       `json:"location"`
	Viewport  geom.Size    `json:"viewport"`
	FocusedID string       `json:"focused_id,omitempty"`
	Windows   []WindowInfo `json:"windows"`
}

// OpenAppInput is the input for the open_app tool.
type OpenAppInput struct {
	Route string `json:"route" jsonschema:"required,Route of the app to open (e.g. /about)"`
}

// WindowResult is the output of tools that act on one window.
type WindowResult struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Created bool   `json:"created,omitempty"`
}

// SearchAppsInput is the input for the search_apps tool.
type SearchAppsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text matched against app titles"`
}

// SearchAppsOutput is the output for the search_apps tool.
type SearchAppsOutput struct {
	Results []palette.Item `json:"results"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	ID     string `json:"id" jsonschema:"required,Window id from list_windows"`
	Action string `json:"action" jsonschema:"required,One of focus, minimize, maximize, close"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id from list_windows"`
	X  int    `json:"x" jsonschema:"required,Left edge in viewport pixels"`
	Y  int    `json:"y" jsonschema:"required,Top edge in viewport pixels"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     string `json:"id" jsonschema:"required,Window id from list_windows"`
	Width  int    `json:"width" jsonschema:"required,New width in pixels"`
	Height int    `json:"height" jsonschema:"required,New height in pixels"`
}

// DragWindowInput is the input for the drag_window tool.
type DragWindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id from list_windows"`
	X  int    `json:"x" jsonschema:"required,Pointer x where the title bar is released"`
	Y  int    `json:"y" jsonschema:"required,Pointer y where the title bar is released"`
}

// DragWindowOutput is the output for the drag_window tool.
type DragWindowOutput struct {
	Window WindowInfo `json:"window"`
}

// NavigateInput is the input for the navigate tool.
type NavigateInput struct {
	Route string `json:"route" jsonschema:"required,Location path to navigate to"`
}

// ToggleDarkModeOutput is the output for the toggle_dark_mode tool.
type ToggleDarkModeOutput struct {
	DarkMode bool `json:"dark_mode"`
}
