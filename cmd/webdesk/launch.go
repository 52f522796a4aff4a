package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/launcher"
	"github.com/1broseidon/webdesk/internal/palette"
	"github.com/1broseidon/webdesk/internal/shell"
)

func runLaunch(args []string) int {
	fs := newFlagSet("launch", "Usage: webdesk launch [--backend NAME] [--fuzzy]",
		"Pick an app from an external menu (rofi, fuzzel, wofi or dmenu) and open it.\nBind this to a window manager key.")
	backendName := fs.String("backend", "", "Menu program (default: first found in PATH)")
	fuzzy := fs.Bool("fuzzy", true, "Fuzzy matching (rofi only)")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "launch takes no arguments")
		fs.Usage()
		return 2
	}

	var (
		backend *launcher.Backend
		err     error
	)
	if *backendName != "" {
		backend, err = launcher.New(*backendName)
	} else {
		backend, err = launcher.Detect()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	backend.FuzzyMatching = *fuzzy

	client := ipc.NewClient()
	apps, err := client.Palette(ipc.PalettePayload{Action: ipc.PaletteQuery})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	state, err := client.GetState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	choice, err := backend.Show(ctx, "webdesk", launcherEntries(apps.Results, state))
	if errors.Is(err, launcher.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	res, err := client.Open(choice.Route)
	return printResult("open", choice.Route, res, err)
}

// launcherEntries marks apps that already have a window.
func launcherEntries(items []palette.Item, state *shell.State) []launcher.Entry {
	open := make(map[string]bool, len(state.Windows))
	for _, w := range state.Windows {
		open[w.Route] = true
	}
	entries := make([]launcher.Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, launcher.Entry{
			Label: it.Label,
			Route: it.Route,
			Icon:  it.Icon,
			Open:  open[it.Route],
		})
	}
	return entries
}
