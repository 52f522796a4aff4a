package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/webdesk/internal/shell"
)

const (
	pollInterval  = time.Second
	statusTimeout = 3 * time.Second
)

// windowItem implements list.Item for one desktop window.
type windowItem struct {
	view shell.WindowView
}

func (i windowItem) Title() string {
	prefix := "  "
	if i.view.Focused {
		prefix = "* "
	}
	suffix := ""
	switch {
	case i.view.Minimized:
		suffix = " (minimized)"
	case i.view.Maximized:
		suffix = " (maximized)"
	}
	return prefix + i.view.Title + suffix
}

func (i windowItem) Description() string {
	return fmt.Sprintf("%s  %dx%d at %d,%d  z=%d",
		i.view.Route, i.view.Size.W, i.view.Size.H, i.view.Position.X, i.view.Position.Y, i.view.ZIndex)
}

func (i windowItem) FilterValue() string { return i.view.Title }

// stateMsg carries a fetched snapshot, or the error that prevented it.
type stateMsg struct {
	state *shell.State
	err   error
}

// tickMsg triggers the next poll.
type tickMsg struct{}

// statusMsg is sent after an IPC action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// model is the root bubbletea model.
type model struct {
	desktop Desktop
	list    list.Model

	connected  bool
	location   string
	darkMode   bool
	windows    int
	statusText string

	width  int
	height int
}

func newModel(desktop Desktop) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{desktop: desktop, list: l}
}

func (m model) fetchState() tea.Msg {
	state, err := m.desktop.GetState()
	return stateMsg{state: state, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// selectedID returns the id of the highlighted window, if any.
func (m model) selectedID() string {
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		return ""
	}
	return item.view.ID
}

// windowAction runs op on the selected window and reports the outcome.
func (m model) windowAction(verb string, op func(string) (shell.Result, error)) tea.Cmd {
	id := m.selectedID()
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		res, err := op(id)
		switch {
		case err != nil:
			return statusMsg{text: fmt.Sprintf("%s failed: %v", verb, err)}
		case !res.OK:
			return statusMsg{text: fmt.Sprintf("%s: window %s is gone", verb, id)}
		default:
			return statusMsg{text: fmt.Sprintf("%s %s", verb, id)}
		}
	}
}

func (m model) toggleDarkMode() tea.Msg {
	dark, err := m.desktop.ToggleDarkMode()
	if err != nil {
		return statusMsg{text: fmt.Sprintf("dark mode failed: %v", err)}
	}
	if dark {
		return statusMsg{text: "dark mode on"}
	}
	return statusMsg{text: "dark mode off"}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchState, tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "f":
			return m, m.windowAction("focused", m.desktop.Focus)
		case "m":
			return m, m.windowAction("minimized", m.desktop.Minimize)
		case "x":
			return m, m.windowAction("toggled maximize on", m.desktop.ToggleMaximize)
		case "c":
			return m, m.windowAction("closed", m.desktop.Close)
		case "d":
			return m, m.toggleDarkMode
		case "r":
			return m, m.fetchState
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.contentHeight())
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchState, tick())

	case stateMsg:
		return m.applyState(msg)

	case statusMsg:
		m.statusText = msg.text
		return m, tea.Batch(m.fetchState, clearStatusAfter())

	case clearStatusMsg:
		m.statusText = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) applyState(msg stateMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.connected = false
		m.windows = 0
		return m, m.list.SetItems(nil)
	}

	m.connected = true
	m.location = msg.state.Location
	m.darkMode = msg.state.DarkMode
	m.windows = len(msg.state.Windows)

	items := make([]list.Item, 0, len(msg.state.Windows))
	for _, w := range msg.state.Windows {
		items = append(items, windowItem{view: w})
	}
	return m, m.list.SetItems(items)
}

// contentHeight returns the height available for the window list.
func (m model) contentHeight() int {
	// status bar (1) + help bar (1)
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m, m.width),
		m.list.View(),
		renderHelpBar(m.statusText, m.width),
	)
}
