package catalog

import "github.com/1broseidon/webdesk/internal/geom"

func size(w, h int) *geom.Size {
	return &geom.Size{W: w, H: h}
}

// BuiltinApps returns the applications shipped with the desktop.
func BuiltinApps() []App {
	return []App{
		{ID: "about", Title: "About.app", Route: "/about", Icon: "user", ChromeStyle: ChromePaper, DefaultSize: size(600, 500)},
		{ID: "projects", Title: "Projects.app", Route: "/projects", Icon: "briefcase", ChromeStyle: ChromeWood, DefaultSize: size(800, 600)},
		{ID: "writing", Title: "Writing.app", Route: "/writing", Icon: "pen-tool", ChromeStyle: ChromePaper, DefaultSize: size(700, 550)},
		{ID: "resume", Title: "Resume.pdf", Route: "/resume", Icon: "file-text", ChromeStyle: ChromePaper, DefaultSize: size(650, 800)},
		{ID: "impact", Title: "Impact.app", Route: "/impact", Icon: "award", ChromeStyle: ChromeWood, DefaultSize: size(600, 650)},
		{ID: "contact", Title: "Contact.app", Route: "/contact", Icon: "mail", ChromeStyle: ChromeLantern, DefaultSize: size(500, 400)},
		{ID: "terminal", Title: "Terminal.app", Route: "/terminal", Icon: "terminal", ChromeStyle: ChromeSlate, DefaultSize: size(700, 500)},
		{ID: "music", Title: "Music.app", Route: "/music", Icon: "music", ChromeStyle: ChromeSlate, DefaultSize: size(400, 500)},
		{ID: "changelog", Title: "Changelog.app", Route: "/changelog", Icon: "scroll", ChromeStyle: ChromePaper, DefaultSize: size(500, 550)},
		{ID: "feedback", Title: "Feedback.app", Route: "/feedback", Icon: "message", ChromeStyle: ChromeLantern, DefaultSize: size(450, 500)},
		{ID: "trash", Title: "Trash", Route: "/trash", Icon: "trash", ChromeStyle: ChromePaper, DefaultSize: size(500, 400)},
	}
}

// Builtin returns the builtin catalog.
func Builtin() *Catalog {
	return MustNew(BuiltinApps())
}
