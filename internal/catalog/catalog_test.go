package catalog

import (
	"strings"
	"testing"

	"github.com/1broseidon/webdesk/internal/geom"
)

func TestBuiltin_LookupAndOrder(t *testing.T) {
	c := Builtin()
	if c.Len() != 11 {
		t.Fatalf("expected 11 builtin apps, got %d", c.Len())
	}

	app, ok := c.Lookup("/projects")
	if !ok {
		t.Fatalf("expected /projects to be registered")
	}
	if app.ChromeStyle != ChromeWood || app.DefaultSize == nil || *app.DefaultSize != (geom.Size{W: 800, H: 600}) {
		t.Fatalf("unexpected projects app: %+v", app)
	}

	if _, ok := c.Lookup("/nope"); ok {
		t.Fatalf("expected unknown route lookup to fail")
	}

	apps := c.Apps()
	if apps[0].Route != "/about" || apps[len(apps)-1].Route != "/trash" {
		t.Fatalf("expected declaration order, got first=%s last=%s", apps[0].Route, apps[len(apps)-1].Route)
	}
}

func TestApps_ReturnsCopy(t *testing.T) {
	c := Builtin()
	apps := c.Apps()
	apps[0].Title = "mutated"

	app, _ := c.Lookup("/about")
	if app.Title != "About.app" {
		t.Fatalf("catalog was mutated through Apps(): %q", app.Title)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		apps    []App
		wantErr string
	}{
		{"missing id", []App{{Route: "/a"}}, "id is required"},
		{"bad route", []App{{ID: "a", Route: "a"}}, "route must start"},
		{"home route", []App{{ID: "a", Route: "/"}}, "route must start"},
		{"trailing slash", []App{{ID: "notes", Route: "/notes/"}}, "not canonical"},
		{"duplicate id", []App{{ID: "a", Route: "/a"}, {ID: "a", Route: "/b"}}, "duplicate id"},
		{"duplicate route", []App{{ID: "a", Route: "/a"}, {ID: "b", Route: "/a"}}, "duplicate route"},
		{"bad chrome", []App{{ID: "a", Route: "/a", ChromeStyle: "neon"}}, "unknown chrome_style"},
		{"bad size", []App{{ID: "a", Route: "/a", DefaultSize: &geom.Size{W: 0, H: 10}}}, "default_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.apps)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New([]App{{ID: "notes", Route: "/notes"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app, _ := c.Lookup("/notes")
	if app.ChromeStyle != ChromePaper {
		t.Fatalf("expected paper chrome default, got %q", app.ChromeStyle)
	}
	if app.Title != "notes" {
		t.Fatalf("expected title to default to id, got %q", app.Title)
	}
}
