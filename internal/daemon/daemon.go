// Package daemon hosts a desktop and the transports that drive it under one
// supervisor, and applies config reloads to the running desktop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/webdesk/internal/catalog"
	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/hotkeys"
	"github.com/1broseidon/webdesk/internal/httpapi"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/platform"
	"github.com/1broseidon/webdesk/internal/runtimepath"
	"github.com/1broseidon/webdesk/internal/shell"
)

// Options configures a Daemon.
type Options struct {
	// ConfigPath is the config file; empty uses config.DefaultConfigPath.
	ConfigPath string
	// SocketPath overrides runtimepath.SocketPath.
	SocketPath string
	Logger     *slog.Logger

	ReconcileInterval time.Duration
}

// Daemon owns the desktop and its services.
type Daemon struct {
	configPath string
	socketPath string
	logger     *slog.Logger
	interval   time.Duration

	mu  sync.Mutex
	cfg *config.Config

	viewport      platform.Viewport
	closeViewport func()
	desktop       *shell.Desktop
}

// New loads the config, opens the viewport and starts the desktop.
func New(opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := opts.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, err
		}
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	apps, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("invalid app catalog: %w", err)
	}

	viewport, closeViewport, err := platform.Open(cfg.ViewportSource(), cfg.ViewportSize())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s viewport: %w", cfg.ViewportSource(), err)
	}

	desktop := shell.New(shell.Options{
		Catalog:  apps,
		Viewport: viewport,
		Tunables: cfg.Tunables(),
		Logger:   logger,
	})
	desktop.Start()

	logger.Info("configuration loaded",
		"path", path,
		"files", len(res.Files),
		"viewport", cfg.ViewportSource(),
		"size", viewport.Size(),
		"apps", len(apps.Apps()),
	)

	return &Daemon{
		configPath:    path,
		socketPath:    socketPath,
		logger:        logger,
		interval:      opts.ReconcileInterval,
		cfg:           cfg,
		viewport:      viewport,
		closeViewport: closeViewport,
		desktop:       desktop,
	}, nil
}

// Desktop returns the hosted desktop.
func (d *Daemon) Desktop() *shell.Desktop { return d.desktop }

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Reload re-reads the config file and applies its tunables. Live windows
// keep their geometry. Viewport, HTTP, hotkey and catalog changes need a
// restart.
func (d *Daemon) Reload() error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	next := res.Config

	d.mu.Lock()
	prev := d.cfg
	d.cfg = next
	d.mu.Unlock()

	if prev.Viewport.Source != next.Viewport.Source {
		d.logger.Warn("viewport source change takes effect after restart", "running", prev.Viewport.Source, "configured", next.Viewport.Source)
	}
	if prev.HTTP != next.HTTP {
		d.logger.Warn("http settings change takes effect after restart")
	}
	if prev.Hotkeys != next.Hotkeys {
		d.logger.Warn("hotkey changes take effect after restart")
	}
	if !slices.EqualFunc(prev.Apps, next.Apps, catalog.App.Equal) {
		d.logger.Warn("app catalog changes take effect after restart")
	}

	d.desktop.Reconfigure(next.Tunables())
	d.logger.Info("config reloaded", "path", d.configPath)
	return nil
}

// Run supervises the IPC server, the HTTP API when enabled, the viewport
// reconciler and the SIGHUP watcher until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.closeViewport()

	if err := ipc.NewClientWithSocket(d.socketPath).Ping(); err == nil {
		return fmt.Errorf("a daemon is already listening on %s", d.socketPath)
	}

	cfg := d.Config()
	httpListen := ""
	if cfg.HTTP.Enabled {
		httpListen = cfg.HTTP.Listen
	}

	super := suture.New("webdesk", suture.Spec{
		EventHook: EventHook(d.logger),
	})

	ipcServer, err := ipc.NewServer(ipc.ServerConfig{
		SocketPath:     d.socketPath,
		Desktop:        d.desktop,
		Reload:         d.Reload,
		ViewportSource: string(cfg.ViewportSource()),
		HTTPListen:     httpListen,
		Logger:         d.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	Add(super, ipcServer)

	if cfg.HTTP.Enabled {
		api := httpapi.New(d.desktop, d.logger)
		Add(super, httpapi.NewServer(httpapi.ServerConfig{
			Addr:    cfg.HTTP.Listen,
			Handler: api.Router(),
			Logger:  d.logger,
		}))
	}

	if _, ok := d.viewport.(platform.Resizable); !ok {
		Add(super, NewReconciler(ReconcilerConfig{
			Interval: d.interval,
			Logger:   d.logger,
		}, d.viewport, d.desktop))
	}

	if cfg.Hotkeys.Any() {
		if cfg.ViewportSource() != platform.SourceX11 {
			d.logger.Warn("hotkeys need the x11 viewport source; ignoring them", "source", cfg.ViewportSource())
		} else if h, err := hotkeys.Open(hotkeys.Bindings(cfg.Hotkeys, cfg.HomeRoute, d.desktop), d.logger); err != nil {
			d.logger.Warn("global hotkeys disabled", "err", err)
		} else {
			Add(super, h)
		}
	}

	Add(super, NewServiceFunc("sighup", d.watchHangup))

	d.logger.Info("webdesk daemon started", "socket", d.socketPath, "http", httpListen)
	err = super.Serve(ctx)
	d.logger.Info("webdesk daemon stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchHangup reloads the config on every SIGHUP.
func (d *Daemon) watchHangup(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigCh:
			d.logger.Info("received SIGHUP, reloading config")
			if err := d.Reload(); err != nil {
				d.logger.Error("config reload failed", "error", err)
			}
		}
	}
}
