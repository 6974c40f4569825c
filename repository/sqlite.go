package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ksai0398/railway-navigation-app/models"
)

// SQLiteBookingRepository reads bookings from the SQLite catalog
type SQLiteBookingRepository struct {
	db *sql.DB
}

// NewSQLiteBookingRepository creates a repository on an open connection
func NewSQLiteBookingRepository(db *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{db: db}
}

// parseTimeString converts a SQLite datetime string to *time.Time.
// Returns nil if the input is nil, empty or unparseable.
func parseTimeString(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

// GetBookingByPNR returns the booking with exactly this PNR
func (r *SQLiteBookingRepository) GetBookingByPNR(ctx context.Context, pnr string) (*models.Booking, error) {
	if pnr == "" {
		return nil, ErrBookingNotFound
	}

	query := `
		SELECT
			pnr,
			train_number,
			train_name,
			platform_number,
			coach_details,
			destination_platform_id,
			updated_at
		FROM bookings
		WHERE pnr = ?
	`

	var b models.Booking
	var updatedAtStr *string
	err := r.db.QueryRowContext(ctx, query, pnr).Scan(
		&b.PNR,
		&b.TrainNumber,
		&b.TrainName,
		&b.PlatformNumber,
		&b.CoachDetails,
		&b.DestinationPlatformID,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pnr %s: %w", pnr, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	b.UpdatedAt = parseTimeString(updatedAtStr)

	return &b, nil
}

// CountBookings returns the number of stored bookings
func (r *SQLiteBookingRepository) CountBookings(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

// Ping checks the connection
func (r *SQLiteBookingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
