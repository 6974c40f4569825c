package db

import (
	"context"
	"fmt"
	"log"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// SeedBookings inserts or updates the given bookings
func (db *DB) SeedBookings(ctx context.Context, bookings []station.Booking) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bookings (
			pnr, train_number, train_name, platform_number,
			coach_details, destination_platform_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (pnr) DO UPDATE SET
			train_number = excluded.train_number,
			train_name = excluded.train_name,
			platform_number = excluded.platform_number,
			coach_details = excluded.coach_details,
			destination_platform_id = excluded.destination_platform_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare booking upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bookings {
		if _, err := stmt.ExecContext(ctx,
			b.PNR, b.TrainNumber, b.TrainName, b.PlatformNumber,
			b.CoachDetails, b.DestinationPlatformID,
		); err != nil {
			return fmt.Errorf("failed to upsert booking %s: %w", b.PNR, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bookings: %w", err)
	}

	log.Printf("Bookings: seeded %d records", len(bookings))
	return nil
}

// CountBookings returns the number of stored bookings
func (db *DB) CountBookings(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}
