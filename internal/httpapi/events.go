package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/1broseidon/webdesk/internal/shell"
)

// streamEvents sends the current snapshot, then one "state" event per
// desktop change until the client goes away.
func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	updates, unsubscribe := a.desktop.Subscribe(r.Context())
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, a.desktop.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, state); err != nil {
				a.logger.Debug("event stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, state shell.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", state.Version, data)
	return err
}
