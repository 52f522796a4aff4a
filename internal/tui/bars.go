package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(m model, width int) string {
	var status string
	if m.connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", fmt.Sprintf("windows:%d", m.windows)}
		if m.location != "" {
			parts = append(parts, "location:"+m.location)
		}
		if m.darkMode {
			parts = append(parts, "dark")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom keybinding bar, or the last action's
// status while one is showing.
func renderHelpBar(statusText string, width int) string {
	help := "j/k: select  enter: focus  m: minimize  x: maximize  c: close  d: dark mode  r: refresh  q: quit"
	color := lipgloss.Color("241")
	if statusText != "" {
		help = statusText
		color = lipgloss.Color("214")
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(color).
		Padding(0, 1)
	return style.Render(help)
}
