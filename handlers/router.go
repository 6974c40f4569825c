package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"

	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Bookings is what the booking and health endpoints need from a repository
type Bookings interface {
	BookingRepository
	BookingStore
}

// RouterOptions holds everything the HTTP routes are wired to
type RouterOptions struct {
	AllowedOrigins []string
	StaticDir      string

	Station  *station.Topology
	Bookings Bookings
	Session  Session
	Events   EventSource
	Location LocationFeed
	Maps     map[string]mapsink.Encoder
	Clicks   GateSelector
}

// NewRouter builds the chi router for the navigator API
func NewRouter(opts RouterOptions) chi.Router {
	stationHandler := NewStationHandler(opts.Station)
	bookingHandler := NewBookingHandler(opts.Bookings)
	navHandler := NewNavigationHandler(opts.Session)
	streamHandler := NewStreamHandler(opts.Events, opts.Session)
	locationHandler := NewLocationHandler(opts.Location)
	mapHandler := NewMapHandler(opts.Station, opts.Maps, opts.Clicks)
	healthHandler := NewHealthHandler(opts.Station, opts.Bookings, opts.Session)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.GetHealth)
	r.Get("/healthz", healthHandler.GetLiveness)

	r.Get("/api/station", stationHandler.GetStation)
	r.Get("/api/bookings/{pnr}", bookingHandler.GetBookingByPNR)

	r.Route("/api/navigation", func(r chi.Router) {
		r.Get("/", navHandler.GetSnapshot)
		r.Get("/events", streamHandler.Stream)
		r.Post("/pnr", navHandler.SelectPNR)
		r.Post("/gate", navHandler.SelectGate)
		r.Post("/start", navHandler.Start)
		r.Post("/pause", navHandler.Pause)
		r.Post("/language", navHandler.SetLanguage)
		r.Post("/live", navHandler.SetLive)
	})

	r.Post("/api/location/fix", locationHandler.PostFix)
	r.Post("/api/location/error", locationHandler.PostError)

	// map drawings are the only large bodies; SSE stays uncompressed
	r.With(compressed).Get("/api/map/{format}", mapHandler.GetMap)
	r.Post("/api/map/gates/{gateId}", mapHandler.SelectGate)

	if opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/*", fs)
	}

	return r
}

func compressed(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// Routes lists the registered API routes for startup logging
func Routes() []string {
	return []string{
		"GET  /health",
		"GET  /healthz",
		"GET  /api/station",
		"GET  /api/bookings/{pnr}",
		"GET  /api/navigation",
		"GET  /api/navigation/events",
		"POST /api/navigation/pnr",
		"POST /api/navigation/gate",
		"POST /api/navigation/start",
		"POST /api/navigation/pause",
		"POST /api/navigation/language",
		"POST /api/navigation/live",
		"POST /api/location/fix",
		"POST /api/location/error",
		"GET  /api/map/{format}",
		"POST /api/map/gates/{gateId}",
	}
}
