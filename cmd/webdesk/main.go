package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/daemon"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/logging"
	"github.com/1broseidon/webdesk/internal/tui"
	"github.com/joho/godotenv"
)

// logLevelEnv overrides log_level for every command.
const logLevelEnv = "WEBDESK_LOG_LEVEL"

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "open":
		os.Exit(runOpen(os.Args[2:]))
	case "close", "focus", "minimize", "maximize":
		os.Exit(runWindowAction(os.Args[1], os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "navigate":
		os.Exit(runNavigate(os.Args[2:]))
	case "dark-mode":
		os.Exit(runDarkMode(os.Args[2:]))
	case "search":
		os.Exit(runSearch(os.Args[2:]))
	case "launch":
		os.Exit(runLaunch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the webdesk daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List open windows")
	fmt.Fprintln(w, "  open <route>        Open or focus the app for a route")
	fmt.Fprintln(w, "  close <id>          Close a window")
	fmt.Fprintln(w, "  focus <id>          Focus a window")
	fmt.Fprintln(w, "  minimize <id>       Minimize a window")
	fmt.Fprintln(w, "  maximize <id>       Toggle maximize on a window")
	fmt.Fprintln(w, "  move <id> <x> <y>   Move a window")
	fmt.Fprintln(w, "  resize <id> <w> <h> Resize a window")
	fmt.Fprintln(w, "  navigate <route>    Change the desktop location")
	fmt.Fprintln(w, "  dark-mode           Toggle dark mode")
	fmt.Fprintln(w, "  search <query>      Search the app palette")
	fmt.Fprintln(w, "  launch              Pick an app with rofi/fuzzel/wofi/dmenu")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write a config file interactively")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive window browser")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'webdesk <command> --help' for command-specific options.")
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

// envLogLevel returns the level from WEBDESK_LOG_LEVEL, or fallback.
func envLogLevel(fallback string) slog.Level {
	if v := os.Getenv(logLevelEnv); v != "" {
		return logging.ParseLevel(v)
	}
	return logging.ParseLevel(fallback)
}

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "Usage: webdesk daemon [--path PATH]", "Run the desktop daemon in the foreground until SIGINT or SIGTERM.\nSIGHUP reloads the configuration.")
	path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level: envLogLevel(res.Config.LogLevel),
		File:  res.Config.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	d, err := daemon.New(daemon.Options{ConfigPath: *path, Logger: logger})
	if err != nil {
		logger.Error("Failed to start daemon", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logger.Error("Daemon stopped", "err", err)
		return 1
	}
	logger.Info("Shutting down webdesk daemon")
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Usage: webdesk status", "Show daemon status via IPC.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("location:        %s\n", status.Location)
	fmt.Printf("window_count:    %d\n", status.WindowCount)
	if status.FocusedID != "" {
		fmt.Printf("focused_id:      %s\n", status.FocusedID)
	}
	fmt.Printf("viewport_source: %s\n", status.ViewportSource)
	if status.HTTPListen != "" {
		fmt.Printf("http_listen:     %s\n", status.HTTPListen)
	}
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runTUI(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: webdesk tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive browser for the daemon's windows.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate windows")
		fmt.Fprintln(os.Stderr, "  Enter, f  Focus selected window")
		fmt.Fprintln(os.Stderr, "  m         Minimize")
		fmt.Fprintln(os.Stderr, "  x         Toggle maximize")
		fmt.Fprintln(os.Stderr, "  c         Close")
		fmt.Fprintln(os.Stderr, "  d         Toggle dark mode")
		fmt.Fprintln(os.Stderr, "  r         Refresh")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		return 2
	}

	if err := tui.Run(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}
