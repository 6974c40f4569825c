package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ksai0398/railway-navigation-app/handlers"
	"github.com/ksai0398/railway-navigation-app/internal/config"
	"github.com/ksai0398/railway-navigation-app/internal/db"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/repository"
)

// openBookings opens the configured booking store and seeds it with the
// station's bookings. The returned func releases the store.
func openBookings(ctx context.Context, cfg *config.Config, topo *station.Topology) (handlers.Bookings, func(), error) {
	switch cfg.BookingStore {
	case config.StoreStatic:
		log.Println("Bookings: serving from station data")
		return repository.NewStaticBookingRepository(topo.Bookings()), func() {}, nil

	case config.StoreSQLite:
		log.Printf("Connecting to SQLite database: %s", cfg.DatabasePath)
		database, err := db.Connect(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		if err := database.SeedBookings(ctx, topo.Bookings()); err != nil {
			database.Close()
			return nil, nil, err
		}
		log.Println("SQLite database connection established")
		return repository.NewSQLiteBookingRepository(database.Conn()), func() { database.Close() }, nil

	case config.StorePostgres:
		repo, err := repository.NewBookingRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		if err := repo.SeedBookings(ctx, topo.Bookings()); err != nil {
			repo.Close()
			return nil, nil, err
		}
		log.Println("PostgreSQL connection established")
		return repo, repo.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown booking store %q", cfg.BookingStore)
}
