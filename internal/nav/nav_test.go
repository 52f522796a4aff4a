package nav

import "testing"

func TestClean(t *testing.T) {
	tests := map[string]string{
		"":         "/",
		"  ":       "/",
		"/":        "/",
		"about":    "/about",
		"/about/":  "/about",
		" /about ": "/about",
		"///":      "/",
		"/a/b/":    "/a/b",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouter_NavigateAndHome(t *testing.T) {
	r := NewRouter("")
	if !r.AtHome() || r.Location() != "/" {
		t.Fatalf("expected to start at home, got %q", r.Location())
	}

	if !r.Navigate("/about") {
		t.Fatalf("expected location change")
	}
	if r.Navigate("about/") {
		t.Fatalf("navigating to the same route should report no change")
	}
	if r.Location() != "/about" || r.AtHome() {
		t.Fatalf("unexpected location %q", r.Location())
	}

	r.GoHome()
	if !r.AtHome() {
		t.Fatalf("expected home, got %q", r.Location())
	}
}
