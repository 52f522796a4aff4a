// Package launcher picks an app through an external dmenu-style menu
// (rofi, fuzzel, wofi or dmenu) so the desktop can be driven from a
// window manager keybinding.
package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the menu closes without a selection.
var ErrCancelled = errors.New("launcher cancelled")

// Entry is one menu row.
type Entry struct {
	Label string
	Route string
	Icon  string
	// Open marks apps that already have a window; rofi highlights them.
	Open bool
}

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// Backend runs one menu program.
type Backend struct {
	command     string
	kind        backendKind
	indexOutput bool
	markup      bool
	icons       bool

	FuzzyMatching bool
}

// Names lists the supported backends in detection order.
var Names = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// New returns the backend for name.
func New(name string) (*Backend, error) {
	switch name {
	case "rofi":
		return &Backend{command: "rofi", kind: kindRofi, indexOutput: true, markup: true, icons: true}, nil
	case "fuzzel":
		return &Backend{command: "fuzzel", kind: kindFuzzel, indexOutput: true, icons: true}, nil
	case "wofi":
		return &Backend{command: "wofi", kind: kindWofi, markup: true, icons: true}, nil
	case "dmenu":
		return &Backend{command: "dmenu", kind: kindDmenu}, nil
	default:
		return nil, fmt.Errorf("unknown launcher backend %q (want one of: %s)", name, strings.Join(Names, ", "))
	}
}

// Detect returns the first backend found in PATH.
func Detect() (*Backend, error) {
	for _, name := range Names {
		if _, err := exec.LookPath(name); err == nil {
			return New(name)
		}
	}
	return nil, fmt.Errorf("no launcher backend found in PATH (looked for: %s)", strings.Join(Names, ", "))
}

// Name is the program the backend runs.
func (b *Backend) Name() string { return b.command }

// Show runs the menu and returns the chosen entry.
func (b *Backend) Show(ctx context.Context, prompt string, entries []Entry) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("launcher: no apps to show")
	}

	rows := make([]Entry, len(entries))
	copy(rows, entries)
	input, active := b.formatInput(rows)

	cmd := exec.CommandContext(ctx, b.command, b.buildArgs(prompt, active)...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Entry{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Entry{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Entry{}, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if selection == "" {
		return Entry{}, ErrCancelled
	}
	return b.parseSelection(selection, rows)
}

func (b *Backend) buildArgs(prompt string, active []int) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		// Index output; labels may contain markup.
		args = append(args, "-format", "i", "-no-custom")
		if b.FuzzyMatching {
			args = append(args, "-matching", "fuzzy")
		}
		args = append(args, "-markup-rows", "-show-icons")
		if len(active) > 0 {
			args = append(args, "-a", formatIndices(active))
		}

	case kindFuzzel:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		args = append(args, "--index")

	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		args = append(args, "--allow-markup", "--allow-images")

	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// formatInput renders one line per entry and returns the rows to highlight.
// Label-matched backends get duplicate labels numbered.
func (b *Backend) formatInput(rows []Entry) (string, []int) {
	if !b.indexOutput {
		seen := make(map[string]int)
		for i := range rows {
			key := sanitizeLabel(rows[i].Label)
			if count := seen[key]; count > 0 {
				rows[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(rows))
	var active []int
	for i, e := range rows {
		lines = append(lines, b.formatEntry(e))
		if e.Open {
			active = append(active, i)
		}
	}
	return strings.Join(lines, "\n"), active
}

func (b *Backend) formatEntry(e Entry) string {
	display := sanitizeLabel(e.Label)
	if b.markup {
		display = html.EscapeString(display)
	}
	if b.kind != kindRofi {
		return display
	}

	// Rofi row properties: one NUL, then \x1f-delimited key/value pairs.
	var attrs []string
	if e.Icon != "" && b.icons {
		attrs = append(attrs, "icon", sanitizeRofiField(e.Icon))
	}
	if e.Route != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(e.Route))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *Backend) parseSelection(selection string, rows []Entry) (Entry, error) {
	if b.indexOutput {
		idx, err := strconv.Atoi(selection)
		if err != nil {
			return findByLabel(selection, rows)
		}
		if idx < 0 || idx >= len(rows) {
			return Entry{}, fmt.Errorf("launcher: index %d out of range", idx)
		}
		return rows[idx], nil
	}
	return findByLabel(selection, rows)
}

func findByLabel(selection string, rows []Entry) (Entry, error) {
	for _, e := range rows {
		if sanitizeLabel(e.Label) == selection {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("launcher: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func formatIndices(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
