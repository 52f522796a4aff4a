package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/webdesk/internal/palette"
	"github.com/1broseidon/webdesk/internal/shell"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetState       CommandType = "GET_STATE"
	CommandReload         CommandType = "RELOAD"
	CommandOpen           CommandType = "OPEN"
	CommandClose          CommandType = "CLOSE"
	CommandFocus          CommandType = "FOCUS"
	CommandMinimize       CommandType = "MINIMIZE"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandMove           CommandType = "MOVE"
	CommandResize         CommandType = "RESIZE"
	CommandPointer        CommandType = "POINTER"
	CommandNavigate       CommandType = "NAVIGATE"
	CommandToggleDarkMode CommandType = "TOGGLE_DARK_MODE"
	CommandSetViewport    CommandType = "SET_VIEWPORT"
	CommandPalette        CommandType = "PALETTE"
	CommandKey            CommandType = "KEY"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning  bool   `json:"daemon_running"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	WindowCount    int    `json:"window_count"`
	FocusedID      string `json:"focused_id,omitempty"`
	Location       string `json:"location"`
	Version        uint64 `json:"version"`
	ViewportSource string `json:"viewport_source"`
	HTTPListen     string `json:"http_listen,omitempty"`
}

type RoutePayload struct {
	Route string `json:"route"`
}

type WindowPayload struct {
	ID string `json:"id"`
}

type MovePayload struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type ResizePayload struct {
	ID string `json:"id"`
	W  int    `json:"w"`
	H  int    `json:"h"`
}

type ViewportPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PaletteAction selects what a PALETTE request does.
type PaletteAction string

const (
	PaletteOpen   PaletteAction = "open"
	PaletteClose  PaletteAction = "close"
	PaletteToggle PaletteAction = "toggle"
	PaletteQuery  PaletteAction = "query"
	PaletteLaunch PaletteAction = "launch"
)

type PalettePayload struct {
	Action PaletteAction `json:"action"`
	Query  string        `json:"query,omitempty"`
	Route  string        `json:"route,omitempty"`
}

// PaletteData is the palette after a PALETTE request. Launched is set for
// the launch action.
type PaletteData struct {
	Open     bool           `json:"open"`
	Results  []palette.Item `json:"results,omitempty"`
	Launched *shell.Result  `json:"launched,omitempty"`
}

// HandledData reports whether an input event changed anything.
type HandledData struct {
	Handled bool `json:"handled"`
}

// DarkModeData is the dark mode flag after a toggle.
type DarkModeData struct {
	DarkMode bool `json:"dark_mode"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
