// Package hotkeys binds global X11 key sequences to desktop actions.
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/shell"
	"github.com/1broseidon/webdesk/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/thejerf/suture/v4"
)

// Actions are the desktop operations a hotkey can trigger.
type Actions interface {
	TogglePalette() bool
	ToggleDarkMode() bool
	Navigate(route string) shell.Result
}

// Binding is one key sequence and its callback.
type Binding struct {
	Name string
	Keys string
	Fn   func()
}

// Bindings maps the configured sequences to desktop actions. Unbound
// entries are skipped.
func Bindings(keys config.Hotkeys, homeRoute string, desk Actions) []Binding {
	var out []Binding
	add := func(name, seq string, fn func()) {
		if seq != "" {
			out = append(out, Binding{Name: name, Keys: seq, Fn: fn})
		}
	}
	add("palette", keys.Palette, func() { desk.TogglePalette() })
	add("dark_mode", keys.DarkMode, func() { desk.ToggleDarkMode() })
	add("home", keys.Home, func() { desk.Navigate(homeRoute) })
	return out
}

// Handler owns an X connection whose event loop dispatches the grabbed keys.
type Handler struct {
	conn   *x11.Connection
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// Open connects to the X server and grabs every binding. A binding that
// cannot be grabbed is logged and skipped; Open fails only when none can.
func Open(bindings []Binding, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	h := &Handler{conn: conn, logger: logger}
	registered := 0
	for _, b := range bindings {
		if err := h.registerFunc(b.Keys, b.Fn); err != nil {
			logger.Warn("Failed to register hotkey", "action", b.Name, "keys", b.Keys, "err", err)
			continue
		}
		logger.Info("Hotkey registered", "action", b.Name, "keys", b.Keys)
		registered++
	}
	if registered == 0 {
		conn.Close()
		return nil, errors.New("no hotkey could be registered")
	}
	return h, nil
}

func (h *Handler) String() string { return "hotkeys" }

// Serve runs the X event loop until ctx is done. The connection is closed
// on return, so a Handler serves once.
func (h *Handler) Serve(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.conn.EventLoop()
	}()

	select {
	case <-ctx.Done():
		h.conn.Quit()
		h.conn.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
			h.logger.Debug("X event loop did not stop after close")
		}
		return ctx.Err()
	case <-done:
		h.conn.Close()
		return fmt.Errorf("x11 event loop exited: %w", suture.ErrDoNotRestart)
	}
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.conn.XUtil, h.conn.Root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
