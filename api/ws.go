package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"promptist/apps"
	"promptist/logger"
)

var upgrader = websocket.Upgrader{
	// The server binds to localhost; the launcher page may be opened from
	// any local origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type contextState struct {
	Current  apps.Frontmost `json:"current"`
	Previous apps.Frontmost `json:"previous"`
}

type wsMessage struct {
	Type     string        `json:"type"`
	Context  *contextState `json:"context,omitempty"`
	BundleID string        `json:"bundleId,omitempty"`
	Name     string        `json:"name,omitempty"`
}

func (h *handler) state() contextState {
	return contextState{Current: h.tracker.Current(), Previous: h.tracker.Previous()}
}

func (h *handler) getContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

// putContext lets a client report the frontmost app itself, for platforms
// without a probe.
func (h *handler) putContext(w http.ResponseWriter, r *http.Request) {
	var f apps.Frontmost
	if err := decodeBody(r, &f, false); err != nil || f.IsZero() {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.tracker.Set(f)
	writeJSON(w, http.StatusOK, h.state())
}

// handleWS streams context changes. The client may send
// {"type":"set","bundleId":...,"name":...} to report the frontmost app.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger.Warnw("WS upgrade error", "error", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	changes, cancel := h.tracker.Subscribe()
	defer cancel()

	st := h.state()
	if err := writeMsg(wsMessage{Type: "context", Context: &st}); err != nil {
		return
	}

	// Pump context changes until cancel closes the channel.
	go func() {
		for range changes {
			st := h.state()
			if err := writeMsg(wsMessage{Type: "context", Context: &st}); err != nil {
				return
			}
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "set":
			f := apps.Frontmost{BundleID: msg.BundleID, Name: msg.Name}
			if f.IsZero() {
				continue
			}
			h.tracker.Set(f)
		case "ping":
			if err := writeMsg(wsMessage{Type: "pong"}); err != nil {
				return
			}
		}
	}
}
