package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/models"
)

// BookingStore is the part of a booking repository the health check uses
type BookingStore interface {
	Ping(ctx context.Context) error
	CountBookings(ctx context.Context) (int, error)
}

// HealthHandler reports whether the service can answer navigation requests
type HealthHandler struct {
	topo     *station.Topology
	bookings BookingStore
	session  SnapshotSource
}

// NewHealthHandler creates a new handler
func NewHealthHandler(topo *station.Topology, bookings BookingStore, session SnapshotSource) *HealthHandler {
	return &HealthHandler{topo: topo, bookings: bookings, session: session}
}

// GetHealth handles GET /health
// Responds 503 when any component is unhealthy.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := []models.ComponentHealth{
		h.checkBookings(ctx),
		h.checkNavigator(ctx),
	}

	response := models.HealthResponse{
		Status:     models.OverallStatus(components),
		Station:    h.topo.Name(),
		Routes:     len(h.topo.RouteKeys()),
		Components: components,
		CheckedAt:  time.Now().UTC(),
	}

	status := http.StatusOK
	if response.Status == models.StatusOutage {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, response)
}

// GetLiveness handles GET /healthz
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *HealthHandler) checkBookings(ctx context.Context) models.ComponentHealth {
	c := models.ComponentHealth{Name: "bookings"}
	if err := h.bookings.Ping(ctx); err != nil {
		c.Status = models.StatusUnhealthy
		c.Details = err.Error()
		return c
	}

	count, err := h.bookings.CountBookings(ctx)
	switch {
	case err != nil:
		c.Status = models.StatusDegraded
		c.Details = err.Error()
	case count == 0:
		// reachable but every PNR lookup will miss
		c.Status = models.StatusDegraded
		c.Details = "no bookings loaded"
	default:
		c.Status = models.StatusHealthy
		c.Details = fmt.Sprintf("%d bookings", count)
	}
	return c
}

func (h *HealthHandler) checkNavigator(ctx context.Context) models.ComponentHealth {
	c := models.ComponentHealth{Name: "navigator"}
	snap, err := h.session.Snapshot(ctx)
	if err != nil {
		c.Status = models.StatusUnhealthy
		c.Details = err.Error()
		return c
	}
	c.Status = models.StatusHealthy
	c.Details = snap.Simulation.State.String()
	return c
}
