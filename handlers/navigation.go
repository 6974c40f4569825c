package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ksai0398/railway-navigation-app/internal/navigator"
	"github.com/ksai0398/railway-navigation-app/internal/sim"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/models"
	"github.com/ksai0398/railway-navigation-app/repository"
)

// Session is the navigation session driven over HTTP
type Session interface {
	SelectPNR(ctx context.Context, pnr string) (navigator.Snapshot, error)
	SelectGate(ctx context.Context, gateID string) (navigator.Snapshot, error)
	Start(ctx context.Context) (navigator.Snapshot, error)
	Pause(ctx context.Context) (navigator.Snapshot, error)
	SetLanguage(ctx context.Context, lang station.Lang) (navigator.Snapshot, error)
	SetLive(ctx context.Context, enabled bool) (navigator.Snapshot, error)
	Snapshot(ctx context.Context) (navigator.Snapshot, error)
}

// NavigationHandler handles the navigation commands. Every response body
// is the session snapshot after the command ran.
type NavigationHandler struct {
	session Session
}

// NewNavigationHandler creates a new handler for session
func NewNavigationHandler(session Session) *NavigationHandler {
	return &NavigationHandler{session: session}
}

// GetSnapshot handles GET /api/navigation
func (h *NavigationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Snapshot(r.Context())
	h.reply(w, snap, err)
}

// SelectPNR handles POST /api/navigation/pnr
func (h *NavigationHandler) SelectPNR(w http.ResponseWriter, r *http.Request) {
	var req models.PNRRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	snap, err := h.session.SelectPNR(r.Context(), req.PNR)
	h.reply(w, snap, err)
}

// SelectGate handles POST /api/navigation/gate
func (h *NavigationHandler) SelectGate(w http.ResponseWriter, r *http.Request) {
	var req models.GateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	snap, err := h.session.SelectGate(r.Context(), req.GateID)
	h.reply(w, snap, err)
}

// Start handles POST /api/navigation/start
func (h *NavigationHandler) Start(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Start(r.Context())
	h.reply(w, snap, err)
}

// Pause handles POST /api/navigation/pause
func (h *NavigationHandler) Pause(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Pause(r.Context())
	h.reply(w, snap, err)
}

// SetLanguage handles POST /api/navigation/language
func (h *NavigationHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req models.LanguageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	lang, err := req.Parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	snap, err := h.session.SetLanguage(r.Context(), lang)
	h.reply(w, snap, err)
}

// SetLive handles POST /api/navigation/live
func (h *NavigationHandler) SetLive(w http.ResponseWriter, r *http.Request) {
	var req models.LiveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	snap, err := h.session.SetLive(r.Context(), req.Enabled)
	h.reply(w, snap, err)
}

func (h *NavigationHandler) reply(w http.ResponseWriter, snap navigator.Snapshot, err error) {
	if err == nil {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, snap)
		return
	}

	status, message := statusFor(err)
	details := map[string]interface{}{"internal": err.Error()}
	if snap.Message != "" {
		details["message"] = snap.Message
	}
	writeError(w, status, message, details)
}

// statusFor maps a navigation error to its HTTP status and public message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, station.ErrNoRoute), errors.Is(err, station.ErrUnknownPlatform):
		return http.StatusNotFound, "No path found"
	case errors.Is(err, station.ErrUnknownGate):
		return http.StatusBadRequest, "Unknown gate"
	case errors.Is(err, navigator.ErrLiveActive):
		return http.StatusConflict, "Live location is active"
	case errors.Is(err, navigator.ErrNoRouteSelected):
		return http.StatusConflict, "No route selected"
	case errors.Is(err, sim.ErrCompleted):
		return http.StatusConflict, "Destination already reached"
	case errors.Is(err, sim.ErrPathTooShort):
		return http.StatusConflict, "Route is too short to walk"
	case errors.Is(err, navigator.ErrStopped):
		return http.StatusServiceUnavailable, "Navigator is not running"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Navigator did not respond"
	default:
		return http.StatusInternalServerError, "Navigation command failed"
	}
}
