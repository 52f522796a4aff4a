// Package nav tracks the desktop's logical location (the route a browser
// would show in its address bar).
package nav

import "strings"

// DefaultHome is the neutral route shown when no window owns the location.
const DefaultHome = "/"

// Router holds the current location. It does not open windows itself; the
// shell reacts to the changes Navigate reports.
type Router struct {
	home     string
	location string
}

// NewRouter creates a router positioned at home.
func NewRouter(home string) *Router {
	home = Clean(home)
	return &Router{home: home, location: home}
}

// Clean normalizes a route: surrounding space trimmed, a leading slash added
// and any trailing slash removed.
func Clean(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return DefaultHome
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			route = DefaultHome
		}
	}
	return route
}

// Home returns the neutral route.
func (r *Router) Home() string {
	return r.home
}

// Location returns the current route.
func (r *Router) Location() string {
	return r.location
}

// AtHome reports whether the location is the neutral route.
func (r *Router) AtHome() bool {
	return r.location == r.home
}

// Navigate moves to route and reports whether the location changed.
func (r *Router) Navigate(route string) bool {
	route = Clean(route)
	if route == r.location {
		return false
	}
	r.location = route
	return true
}

// GoHome returns to the neutral route.
func (r *Router) GoHome() {
	r.Navigate(r.home)
}
