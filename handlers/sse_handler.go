package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"nba-predictions-go/logging"
	"nba-predictions-go/middleware"
	"nba-predictions-go/services"
)

// SSEHandler streams broadcaster events to browsers
type SSEHandler struct {
	broadcaster *services.EventBroadcaster
	done        chan struct{}
	doneOnce    sync.Once
	logger      *logging.Logger
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(broadcaster *services.EventBroadcaster) *SSEHandler {
	return &SSEHandler{
		broadcaster: broadcaster,
		done:        make(chan struct{}),
		logger:      logging.WithPrefix("SSE"),
	}
}

// Shutdown ends every open stream so the server can drain
func (h *SSEHandler) Shutdown() {
	h.doneOnce.Do(func() { close(h.done) })
}

// Handle serves one event stream until the client disconnects
func (h *SSEHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if user := middleware.GetUserFromContext(r); user != nil {
		userID = user.ID
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := h.broadcaster.AddClient(userID)
	defer h.broadcaster.RemoveClient(client)
	h.logger.Infof("New client connected from %s (UserID: %q)", r.RemoteAddr, userID)

	fmt.Fprintf(w, "event: connection\ndata: SSE connection established\n\n")
	flusher.Flush()

	for {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return
			}
			// already framed as id:/event:/data:
			fmt.Fprint(w, message)
			flusher.Flush()
		case <-r.Context().Done():
			h.logger.Debugf("Client disconnected (UserID: %q)", userID)
			return
		case <-h.done:
			return
		}
	}
}
