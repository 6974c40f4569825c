package handlers

import (
	"net/http"

	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/models"
)

// StationHandler serves the station layout
type StationHandler struct {
	topo *station.Topology
}

// NewStationHandler creates a handler for topo
func NewStationHandler(topo *station.Topology) *StationHandler {
	return &StationHandler{topo: topo}
}

// GetStation handles GET /api/station
// Returns every point, the gates and the authored route keys.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	// the layout never changes while the process runs
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, models.NewStationResponse(h.topo))
}
