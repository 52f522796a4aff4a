// Package httpapi exposes the desktop to browser clients: JSON endpoints for
// every desktop operation and a server-sent event stream of snapshots.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1broseidon/webdesk/internal/geom"
	"github.com/1broseidon/webdesk/internal/palette"
	"github.com/1broseidon/webdesk/internal/shell"
)

// API serves a desktop over HTTP.
type API struct {
	desktop *shell.Desktop
	logger  *slog.Logger
}

// New creates an API. A nil logger uses slog.Default().
func New(desktop *shell.Desktop, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{desktop: desktop, logger: logger}
}

// Router builds the route tree.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(a.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", a.getState)
		r.Get("/events", a.streamEvents)
		r.Get("/apps", a.getApps)

		r.Post("/open", a.open)
		r.Post("/navigate", a.navigate)

		r.Route("/windows/{id}", func(r chi.Router) {
			r.Get("/content", a.getContent)
			r.Post("/{action}", a.windowAction)
			r.Put("/position", a.moveWindow)
			r.Put("/size", a.resizeWindow)
		})

		r.Post("/pointer", a.pointer)
		r.Post("/keys", a.key)
		r.Put("/viewport", a.setViewport)
		r.Post("/dark-mode", a.toggleDarkMode)

		r.Get("/palette", a.searchPalette)
		r.Post("/palette/launch", a.launch)
		r.Post("/palette/{action}", a.paletteAction)

		r.Post("/context-menu", a.openContextMenu)
		r.Delete("/context-menu", a.closeContextMenu)
		r.Post("/context-menu/action", a.contextAction)
	})

	return r
}

type routeBody struct {
	Route string `json:"route"`
}

type sizeBody struct {
	W int `json:"w"`
	H int `json:"h"`
}

type viewportBody struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type actionBody struct {
	Action palette.Action `json:"action"`
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.desktop.Snapshot())
}

func (a *API) getApps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.desktop.Apps())
}

func (a *API) getContent(w http.ResponseWriter, r *http.Request) {
	pane, ok := a.desktop.Render(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no content for window")
		return
	}
	writeJSON(w, http.StatusOK, pane)
}

func (a *API) open(w http.ResponseWriter, r *http.Request) {
	var body routeBody
	if !decode(w, r, &body) {
		return
	}
	if body.Route == "" {
		writeError(w, http.StatusBadRequest, "route is required")
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Open(body.Route))
}

func (a *API) navigate(w http.ResponseWriter, r *http.Request) {
	var body routeBody
	if !decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Navigate(body.Route))
}

func (a *API) windowAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var op func(string) shell.Result
	switch chi.URLParam(r, "action") {
	case "focus":
		op = a.desktop.Focus
	case "minimize":
		op = a.desktop.Minimize
	case "maximize":
		op = a.desktop.ToggleMaximize
	case "close":
		op = a.desktop.Close
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown window action %q", chi.URLParam(r, "action")))
		return
	}
	writeJSON(w, http.StatusOK, op(id))
}

func (a *API) moveWindow(w http.ResponseWriter, r *http.Request) {
	var body geom.Point
	if !decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Move(chi.URLParam(r, "id"), body))
}

func (a *API) resizeWindow(w http.ResponseWriter, r *http.Request) {
	var body sizeBody
	if !decode(w, r, &body) {
		return
	}
	if body.W <= 0 || body.H <= 0 {
		writeError(w, http.StatusBadRequest, "w and h must be > 0")
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Resize(chi.URLParam(r, "id"), geom.Size{W: body.W, H: body.H}))
}

func (a *API) pointer(w http.ResponseWriter, r *http.Request) {
	var ev shell.PointerEvent
	if !decode(w, r, &ev) {
		return
	}
	switch ev.Kind {
	case shell.PointerDown, shell.PointerMove, shell.PointerUp:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown pointer kind %q", ev.Kind))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"handled": a.desktop.Pointer(ev)})
}

func (a *API) key(w http.ResponseWriter, r *http.Request) {
	var ev shell.KeyEvent
	if !decode(w, r, &ev) {
		return
	}
	if ev.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"handled": a.desktop.Key(ev)})
}

func (a *API) setViewport(w http.ResponseWriter, r *http.Request) {
	var body viewportBody
	if !decode(w, r, &body) {
		return
	}
	if !a.desktop.SetViewport(geom.Size{W: body.Width, H: body.Height}) {
		writeError(w, http.StatusBadRequest, "viewport cannot be set (non-positive size or display-owned viewport)")
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Snapshot().Viewport)
}

func (a *API) toggleDarkMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"dark_mode": a.desktop.ToggleDarkMode()})
}

func (a *API) searchPalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.desktop.SearchPalette(r.URL.Query().Get("q")))
}

func (a *API) launch(w http.ResponseWriter, r *http.Request) {
	var body routeBody
	if !decode(w, r, &body) {
		return
	}
	if body.Route == "" {
		writeError(w, http.StatusBadRequest, "route is required")
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Launch(body.Route))
}

func (a *API) paletteAction(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "open":
		a.desktop.OpenPalette()
	case "close":
		a.desktop.ClosePalette()
	case "toggle":
		a.desktop.TogglePalette()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown palette action %q", chi.URLParam(r, "action")))
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Snapshot().Palette)
}

func (a *API) openContextMenu(w http.ResponseWriter, r *http.Request) {
	var pos geom.Point
	if !decode(w, r, &pos) {
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.OpenContextMenu(pos))
}

func (a *API) closeContextMenu(w http.ResponseWriter, r *http.Request) {
	a.desktop.CloseContextMenu()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) contextAction(w http.ResponseWriter, r *http.Request) {
	var body actionBody
	if !decode(w, r, &body) {
		return
	}
	if !a.desktop.ContextAction(body.Action) {
		writeError(w, http.StatusConflict, fmt.Sprintf("action %q is not available", body.Action))
		return
	}
	writeJSON(w, http.StatusOK, a.desktop.Snapshot())
}

// decode reads a JSON body into v, answering 400 when it is missing or
// malformed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	case err != nil:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
