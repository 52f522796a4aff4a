package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/shell"
	"golang.org/x/term"
)

func newFlagSet(name, usage, desc string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, desc)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags reports done when the caller should return code right away.
func parseFlags(fs *flag.FlagSet, args []string) (code int, done bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, true
		}
		return 2, true
	}
	return 0, false
}

func runList(args []string) int {
	fs := newFlagSet("list", "Usage: webdesk list [--json] [--all]", "List open windows in stacking order, topmost first.\nOutput is JSON when stdout is not a terminal.")
	jsonOut := fs.Bool("json", false, "Output JSON")
	all := fs.Bool("all", true, "Include minimized windows")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	state, err := ipc.NewClient().GetState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	windows := stackOrder(state, *all)

	if *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	writeWindowTable(os.Stdout, windows)
	return 0
}

// stackOrder returns the windows topmost first.
func stackOrder(state *shell.State, includeMinimized bool) []shell.WindowView {
	byID := make(map[string]shell.WindowView, len(state.Windows))
	for _, w := range state.Windows {
		byID[w.ID] = w
	}
	out := make([]shell.WindowView, 0, len(state.Windows))
	for i := len(state.Stack) - 1; i >= 0; i-- {
		w, ok := byID[state.Stack[i]]
		if !ok || (w.Minimized && !includeMinimized) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func writeWindowTable(w io.Writer, windows []shell.WindowView) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "no windows")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROUTE\tTITLE\tPOSITION\tSIZE\tZ\tSTATE")
	for _, win := range windows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d,%d\t%dx%d\t%d\t%s\n",
			win.ID, win.Route, win.Title,
			win.Position.X, win.Position.Y,
			win.Size.W, win.Size.H,
			win.ZIndex, windowState(win))
	}
	tw.Flush()
}

func windowState(w shell.WindowView) string {
	var parts []string
	if w.Focused {
		parts = append(parts, "focused")
	}
	if w.Minimized {
		parts = append(parts, "minimized")
	}
	if w.Maximized {
		parts = append(parts, "maximized")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func runOpen(args []string) int {
	fs := newFlagSet("open", "Usage: webdesk open <route>", "Open the app registered for route, or focus its window if already open.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "open requires <route>")
		fs.Usage()
		return 2
	}
	res, err := ipc.NewClient().Open(fs.Arg(0))
	return printResult("open", fs.Arg(0), res, err)
}

func runWindowAction(action string, args []string) int {
	desc := map[string]string{
		"close":    "Close a window.",
		"focus":    "Raise and focus a window, restoring it if minimized.",
		"minimize": "Minimize a window to the dock.",
		"maximize": "Toggle a window between maximized and its previous frame.",
	}[action]
	fs := newFlagSet(action, fmt.Sprintf("Usage: webdesk %s <id>", action), desc)
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <id>\n", action)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	id := fs.Arg(0)
	var (
		res shell.Result
		err error
	)
	switch action {
	case "close":
		res, err = client.Close(id)
	case "focus":
		res, err = client.Focus(id)
	case "minimize":
		res, err = client.Minimize(id)
	case "maximize":
		res, err = client.ToggleMaximize(id)
	}
	return printResult(action, id, res, err)
}

func runMove(args []string) int {
	fs := newFlagSet("move", "Usage: webdesk move <id> <x> <y>", "Place a window's top-left corner at x,y.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "move requires <id> <x> <y>")
		fs.Usage()
		return 2
	}
	nums, err := parseInts(fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	res, err := ipc.NewClient().Move(fs.Arg(0), nums[0], nums[1])
	return printResult("move", fs.Arg(0), res, err)
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "Usage: webdesk resize <id> <width> <height>", "Resize a window. Sizes below the minimum window size are raised to it.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "resize requires <id> <width> <height>")
		fs.Usage()
		return 2
	}
	nums, err := parseInts(fs.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	res, err := ipc.NewClient().Resize(fs.Arg(0), nums[0], nums[1])
	return printResult("resize", fs.Arg(0), res, err)
}

func runNavigate(args []string) int {
	fs := newFlagSet("navigate", "Usage: webdesk navigate <route>", "Change the desktop location. App routes open their window.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "navigate requires <route>")
		fs.Usage()
		return 2
	}
	res, err := ipc.NewClient().Navigate(fs.Arg(0))
	return printResult("navigate", fs.Arg(0), res, err)
}

func runDarkMode(args []string) int {
	fs := newFlagSet("dark-mode", "Usage: webdesk dark-mode", "Toggle dark mode and print the new setting.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "dark-mode takes no arguments")
		fs.Usage()
		return 2
	}
	on, err := ipc.NewClient().ToggleDarkMode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("dark_mode: %v\n", on)
	return 0
}

func runSearch(args []string) int {
	fs := newFlagSet("search", "Usage: webdesk search [query]", "Search launchable apps the way the command palette does.")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	data, err := ipc.NewClient().Palette(ipc.PalettePayload{
		Action: ipc.PaletteQuery,
		Query:  strings.Join(fs.Args(), " "),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, item := range data.Results {
		fmt.Printf("%-24s %s\n", item.Label, item.Route)
	}
	return 0
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = n
	}
	return out, nil
}

// printResult reports an id-addressed operation. A stale id is exit code 1.
func printResult(verb, target string, res shell.Result, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.OK {
		if verb == "open" || verb == "navigate" {
			fmt.Fprintf(os.Stderr, "%s: no app is registered for %s\n", verb, target)
		} else {
			fmt.Fprintf(os.Stderr, "%s: no window with id %s\n", verb, target)
		}
		return 1
	}
	switch {
	case res.Created:
		fmt.Printf("opened %s\n", res.ID)
	case res.ID != "":
		fmt.Printf("%s %s\n", verb, res.ID)
	default:
		fmt.Printf("%s ok\n", verb)
	}
	return 0
}
