package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ksai0398/railway-navigation-app/handlers"
	"github.com/ksai0398/railway-navigation-app/internal/config"
	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/navigator"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("Starting station navigator...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded: store=%s speed=%.1fm/s tick=%v lang=%s", cfg.BookingStore, cfg.Speed, cfg.TickPeriod, cfg.Lang)

	// ═══════════════════════════════════════════════════════
	// PHASE 1: Station and bookings
	// ═══════════════════════════════════════════════════════
	topo, err := loadStation(cfg.StationFile)
	if err != nil {
		log.Fatalf("Failed to load station: %v", err)
	}
	log.Printf("Station %s: %d points, %d routes", topo.Name(), len(topo.Points()), len(topo.RouteKeys()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bookings, closeBookings, err := openBookings(ctx, cfg, topo)
	if err != nil {
		log.Fatalf("Failed to open booking store: %v", err)
	}
	defer closeBookings()

	// ═══════════════════════════════════════════════════════
	// PHASE 2: Navigator
	// ═══════════════════════════════════════════════════════
	lang, _ := station.ParseLang(cfg.Lang)
	src := location.NewPushSource(cfg.LocationMaxWait)
	svg := mapsink.NewSVG()
	geo := mapsink.NewGeoJSON()
	feed := mapsink.NewGTFSRealtime("walker")

	nav := navigator.New(topo, bookings, src, navigator.Options{
		Speed:      cfg.Speed,
		TickPeriod: cfg.TickPeriod,
		Lang:       lang,
		CacheSize:  cfg.PathCacheSize,
		Sinks:      []mapsink.Sink{svg, geo, feed},
	})

	navDone := make(chan struct{})
	go func() {
		defer close(navDone)
		if err := nav.Run(ctx); err != nil {
			log.Printf("Navigator stopped with error: %v", err)
		}
	}()

	// ═══════════════════════════════════════════════════════
	// PHASE 3: HTTP
	// ═══════════════════════════════════════════════════════
	router := handlers.NewRouter(handlers.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Station:        topo,
		Bookings:       bookings,
		Session:        nav,
		Events:         nav.Hub(),
		Location:       src,
		Maps: map[string]mapsink.Encoder{
			"svg":     svg,
			"geojson": geo,
			"gtfs-rt": feed,
		},
		Clicks: svg,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		log.Println("Endpoints:")
		for _, route := range handlers.Routes() {
			log.Printf("  %s", route)
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// ═══════════════════════════════════════════════════════
	// PHASE 4: Graceful Shutdown
	// ═══════════════════════════════════════════════════════
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	// SSE streams end when the navigator closes its hub
	cancel()
	<-navDone
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}

func loadStation(path string) (*station.Topology, error) {
	if path == "" {
		return station.Default()
	}
	log.Printf("Loading station from %s", path)
	return station.LoadFile(path)
}
