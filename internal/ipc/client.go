package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/webdesk/internal/runtimepath"
	"github.com/1broseidon/webdesk/internal/shell"
)

// ErrDaemonNotRunning is returned when the socket cannot be reached.
var ErrDaemonNotRunning = errors.New("daemon is not running")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
	dial       func(socketPath string, timeout time.Duration) (net.Conn, error)
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
		dial: func(path string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("unix", path, timeout)
		},
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial(c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetState retrieves the full desktop snapshot.
func (c *Client) GetState() (*shell.State, error) {
	var state shell.State
	if err := c.call(CommandGetState, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Open opens or focuses the window for route.
func (c *Client) Open(route string) (shell.Result, error) {
	var res shell.Result
	err := c.call(CommandOpen, RoutePayload{Route: route}, &res)
	return res, err
}

// Close closes a window.
func (c *Client) Close(id string) (shell.Result, error) {
	return c.windowCall(CommandClose, id)
}

// Focus focuses a window.
func (c *Client) Focus(id string) (shell.Result, error) {
	return c.windowCall(CommandFocus, id)
}

// Minimize minimizes a window.
func (c *Client) Minimize(id string) (shell.Result, error) {
	return c.windowCall(CommandMinimize, id)
}

// ToggleMaximize maximizes or restores a window.
func (c *Client) ToggleMaximize(id string) (shell.Result, error) {
	return c.windowCall(CommandToggleMaximize, id)
}

func (c *Client) windowCall(command CommandType, id string) (shell.Result, error) {
	var res shell.Result
	err := c.call(command, WindowPayload{ID: id}, &res)
	return res, err
}

// Move places a window.
func (c *Client) Move(id string, x, y int) (shell.Result, error) {
	var res shell.Result
	err := c.call(CommandMove, MovePayload{ID: id, X: x, Y: y}, &res)
	return res, err
}

// Resize sets a window's size.
func (c *Client) Resize(id string, w, h int) (shell.Result, error) {
	var res shell.Result
	err := c.call(CommandResize, ResizePayload{ID: id, W: w, H: h}, &res)
	return res, err
}

// Pointer sends one pointer event.
func (c *Client) Pointer(ev shell.PointerEvent) (bool, error) {
	var data HandledData
	err := c.call(CommandPointer, ev, &data)
	return data.Handled, err
}

// Navigate changes the desktop location.
func (c *Client) Navigate(route string) (shell.Result, error) {
	var res shell.Result
	err := c.call(CommandNavigate, RoutePayload{Route: route}, &res)
	return res, err
}

// ToggleDarkMode flips dark mode and returns the new value.
func (c *Client) ToggleDarkMode() (bool, error) {
	var data DarkModeData
	err := c.call(CommandToggleDarkMode, nil, &data)
	return data.DarkMode, err
}

// SetViewport reports the client viewport size.
func (c *Client) SetViewport(width, height int) error {
	return c.call(CommandSetViewport, ViewportPayload{Width: width, Height: height}, nil)
}

// Palette runs a palette action.
func (c *Client) Palette(p PalettePayload) (*PaletteData, error) {
	var data PaletteData
	if err := c.call(CommandPalette, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Key sends one key press.
func (c *Client) Key(ev shell.KeyEvent) (bool, error) {
	var data HandledData
	err := c.call(CommandKey, ev, &data)
	return data.Handled, err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
