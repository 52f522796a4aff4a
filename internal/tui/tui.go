// Package tui is a terminal window browser for a running desktop: it lists
// windows live and applies window actions through the daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/shell"
)

// Desktop is the subset of the IPC client the browser uses.
type Desktop interface {
	GetState() (*shell.State, error)
	Focus(id string) (shell.Result, error)
	Minimize(id string) (shell.Result, error)
	ToggleMaximize(id string) (shell.Result, error)
	Close(id string) (shell.Result, error)
	ToggleDarkMode() (bool, error)
}

var _ Desktop = (*ipc.Client)(nil)

// Run starts the browser on the alternate screen and blocks until the user
// quits.
func Run(desktop Desktop) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(desktop), tea.WithAltScreen()).Run()
	return err
}
