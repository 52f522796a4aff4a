package palette

import "github.com/1broseidon/webdesk/internal/geom"

// Action identifies what a context menu item does.
type Action string

const (
	ActionNewWindow      Action = "new-window"
	ActionSearchApps     Action = "search-apps"
	ActionToggleDarkMode Action = "toggle-dark-mode"
	ActionRefresh        Action = "refresh"
	ActionAbout          Action = "about"
)

// MenuItem represents an entry in the desktop context menu.
type MenuItem struct {
	Label     string `json:"label,omitempty"`   // Display label
	Action    Action `json:"action,omitempty"`  // Empty for dividers
	Icon      string `json:"icon,omitempty"`    // Icon key
	Hint      string `json:"hint,omitempty"`    // Keyboard shortcut shown at the right edge
	IsDivider bool   `json:"divider,omitempty"` // Non-selectable divider line
}

// Menu is an open context menu anchored at a pointer position.
type Menu struct {
	Pos   geom.Point `json:"position"`
	Items []MenuItem `json:"items"`
}

// ContextMenu builds the desktop context menu at pos. The dark mode entry
// is labelled with the mode it switches to.
func ContextMenu(pos geom.Point, darkMode bool) Menu {
	modeLabel, modeIcon := "Switch to Dark Mode", "moon"
	if darkMode {
		modeLabel, modeIcon = "Switch to Light Mode", "sun"
	}

	return Menu{
		Pos: pos,
		Items: []MenuItem{
			{Label: "New Window", Action: ActionNewWindow, Icon: "file"},
			{Label: "Search Apps", Action: ActionSearchApps, Icon: "search", Hint: "⌘K"},
			{IsDivider: true},
			{Label: modeLabel, Action: ActionToggleDarkMode, Icon: modeIcon},
			{Label: "Refresh Desktop", Action: ActionRefresh, Icon: "refresh"},
			{IsDivider: true},
			{Label: "About", Action: ActionAbout, Icon: "info"},
		},
	}
}

// Has reports whether the menu offers action.
func (m Menu) Has(action Action) bool {
	for _, item := range m.Items {
		if !item.IsDivider && item.Action == action {
			return true
		}
	}
	return false
}
