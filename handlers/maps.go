package handlers

import (
	"bytes"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// GateSelector receives gate clicks made on a rendered map
type GateSelector interface {
	SelectGate(gateID string)
}

// MapHandler serves the current drawing of each map renderer
type MapHandler struct {
	topo     *station.Topology
	encoders map[string]mapsink.Encoder
	clicks   GateSelector
}

// NewMapHandler serves encoders by format name; clicks on gate markers go to clicks
func NewMapHandler(topo *station.Topology, encoders map[string]mapsink.Encoder, clicks GateSelector) *MapHandler {
	return &MapHandler{topo: topo, encoders: encoders, clicks: clicks}
}

// GetMap handles GET /api/map/{format}
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	enc, ok := h.encoders[format]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown map format", map[string]interface{}{
			"format":    format,
			"available": h.formats(),
		})
		return
	}

	var buf bytes.Buffer
	if _, err := enc.WriteTo(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render map", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Map: failed to write %s: %v", format, err)
	}
}

// SelectGate handles POST /api/map/gates/{gateId}, a click on a gate marker
func (h *MapHandler) SelectGate(w http.ResponseWriter, r *http.Request) {
	gateID := chi.URLParam(r, "gateId")
	if !h.topo.IsGate(gateID) {
		writeError(w, http.StatusNotFound, "Unknown gate", map[string]interface{}{
			"gateId": gateID,
		})
		return
	}

	h.clicks.SelectGate(gateID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *MapHandler) formats() []string {
	out := make([]string, 0, len(h.encoders))
	for name := range h.encoders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
