package content

import "github.com/1broseidon/webdesk/internal/catalog"

// BuiltinPanes returns the panes shipped for the builtin catalog.
func BuiltinPanes() map[string]Pane {
	return map[string]Pane{
		"/about": {Sections: []Section{
			{Heading: "Hello", Lines: []string{
				"I build digital experiences that feel like turning the pages of a well-loved sketchbook.",
			}},
			{Heading: "Principles", Lines: []string{
				"Intentional Design: every pixel should serve a purpose.",
				"Cozy Systems: technology should reduce stress, not create it.",
				"Open Roots: growing together through shared knowledge.",
			}},
		}},
		"/projects": {Kind: KindList, Sections: []Section{
			{Heading: "Projects", Lines: []string{"Selected work, newest first."}},
		}},
		"/writing": {Kind: KindList, Sections: []Section{
			{Heading: "Writing", Lines: []string{"Essays and notes."}},
		}},
		"/resume": {Sections: []Section{
			{Heading: "Experience", Lines: []string{}},
			{Heading: "Education", Lines: []string{}},
		}},
		"/impact": {Kind: KindList, Sections: []Section{
			{Heading: "Impact", Lines: []string{}},
		}},
		"/contact": {Kind: KindForm, Sections: []Section{
			{Heading: "Let's write a story together", Lines: []string{}},
		}},
		"/terminal": {Kind: KindTerminal, Sections: []Section{
			{Lines: []string{"Type 'help' for available commands."}},
		}},
		"/music": {Kind: KindPlayer, Sections: []Section{
			{Heading: "Now Playing", Lines: []string{}},
		}},
		"/changelog": {Kind: KindList, Sections: []Section{
			{Heading: "Changelog", Lines: []string{"What's new on the desktop."}},
		}},
		"/feedback": {Kind: KindForm, Sections: []Section{
			{Heading: "Feedback", Lines: []string{}},
		}},
		"/trash": {Kind: KindList, Sections: []Section{
			{Heading: "Trash", Lines: []string{"Trash is empty."}},
		}},
	}
}

// Builtin returns a renderer for the builtin catalog.
func Builtin() *Static {
	return NewStatic(catalog.BuiltinApps(), BuiltinPanes())
}
