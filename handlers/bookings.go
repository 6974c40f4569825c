package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ksai0398/railway-navigation-app/models"
	"github.com/ksai0398/railway-navigation-app/repository"
)

// BookingRepository defines the interface for booking lookups
type BookingRepository interface {
	GetBookingByPNR(ctx context.Context, pnr string) (*models.Booking, error)
}

// BookingHandler handles HTTP requests for booking data
type BookingHandler struct {
	repo BookingRepository
}

// NewBookingHandler creates a new handler with the given repository
func NewBookingHandler(repo BookingRepository) *BookingHandler {
	return &BookingHandler{repo: repo}
}

// GetBookingByPNR handles GET /api/bookings/{pnr}
// The PNR must match exactly; there is no partial or fuzzy lookup.
func (h *BookingHandler) GetBookingByPNR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	req := models.PNRRequest{PNR: chi.URLParam(r, "pnr")}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	booking, err := h.repo.GetBookingByPNR(ctx, req.PNR)
	if errors.Is(err, repository.ErrBookingNotFound) {
		writeError(w, http.StatusNotFound, "Booking not found", map[string]interface{}{
			"pnr": req.PNR,
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve booking", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, booking)
}
