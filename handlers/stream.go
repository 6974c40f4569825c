package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ksai0398/railway-navigation-app/internal/navigator"
)

const streamHeartbeat = 15 * time.Second

// EventSource hands out navigation event subscriptions
type EventSource interface {
	Subscribe() (id string, events <-chan navigator.Event, cancel func())
}

// SnapshotSource returns the current session state
type SnapshotSource interface {
	Snapshot(ctx context.Context) (navigator.Snapshot, error)
}

// StreamHandler pushes navigation events to browsers as server-sent events
type StreamHandler struct {
	events    EventSource
	snapshots SnapshotSource
}

// NewStreamHandler creates a new handler
func NewStreamHandler(events EventSource, snapshots SnapshotSource) *StreamHandler {
	return &StreamHandler{events: events, snapshots: snapshots}
}

// Stream handles GET /api/navigation/events
// The first event is a full snapshot; later events are deltas from the hub.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	id, events, cancel := h.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log.Printf("Stream: subscriber %s connected", id)
	defer log.Printf("Stream: subscriber %s disconnected", id)

	seq := 0
	if snap, err := h.snapshots.Snapshot(r.Context()); err == nil {
		if err := writeEvent(w, seq, "snapshot", snap); err != nil {
			return
		}
		flusher.Flush()
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			seq++
			if err := writeEvent(w, seq, e.Type, e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, seq int, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Stream: failed to encode %s event: %v", eventType, err)
		return nil
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, eventType, data)
	return err
}
