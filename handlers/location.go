package handlers

import (
	"net/http"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/models"
)

// LocationFeed accepts device readings forwarded by a browser
type LocationFeed interface {
	Push(fix location.Fix)
	Fail(err *location.Error)
}

// LocationHandler relays the browser's geolocation watch into the
// navigator's location source
type LocationHandler struct {
	feed LocationFeed
}

// NewLocationHandler creates a new handler for feed
func NewLocationHandler(feed LocationFeed) *LocationHandler {
	return &LocationHandler{feed: feed}
}

// PostFix handles POST /api/location/fix
func (h *LocationHandler) PostFix(w http.ResponseWriter, r *http.Request) {
	var req models.LocationFixRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.feed.Push(req.Fix())
	w.WriteHeader(http.StatusAccepted)
}

// PostError handles POST /api/location/error
// Unrecognized codes are reported as unknown.
func (h *LocationHandler) PostError(w http.ResponseWriter, r *http.Request) {
	var req models.LocationErrorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.feed.Fail(req.ToError())
	w.WriteHeader(http.StatusAccepted)
}
