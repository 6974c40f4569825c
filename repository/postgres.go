package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/models"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS bookings (
		pnr                     TEXT PRIMARY KEY,
		train_number            TEXT NOT NULL,
		train_name              TEXT NOT NULL DEFAULT '',
		platform_number         TEXT NOT NULL,
		coach_details           TEXT NOT NULL DEFAULT '',
		destination_platform_id TEXT NOT NULL,
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// BookingRepository reads bookings from Postgres
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(databaseURL string) (*BookingRepository, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &BookingRepository{pool: pool}, nil
}

func (r *BookingRepository) Close() {
	r.pool.Close()
}

// EnsureSchema creates the bookings table if it doesn't exist
func (r *BookingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedBookings inserts or updates the given bookings in one batch
func (r *BookingRepository) SeedBookings(ctx context.Context, bookings []station.Booking) error {
	batch := &pgx.Batch{}
	for _, b := range bookings {
		batch.Queue(`
			INSERT INTO bookings (
				pnr, train_number, train_name, platform_number,
				coach_details, destination_platform_id, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (pnr) DO UPDATE SET
				train_number = EXCLUDED.train_number,
				train_name = EXCLUDED.train_name,
				platform_number = EXCLUDED.platform_number,
				coach_details = EXCLUDED.coach_details,
				destination_platform_id = EXCLUDED.destination_platform_id,
				updated_at = EXCLUDED.updated_at
		`, b.PNR, b.TrainNumber, b.TrainName, b.PlatformNumber, b.CoachDetails, b.DestinationPlatformID)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingByPNR(ctx context.Context, pnr string) (*models.Booking, error) {
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
		WHERE pnr = $1
	`

	var b models.Booking
	err := r.pool.QueryRow(ctx, query, pnr).Scan(
		&b.PNR,
		&b.TrainNumber,
		&b.TrainName,
		&b.PlatformNumber,
		&b.CoachDetails,
		&b.DestinationPlatformID,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pnr %s: %w", pnr, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}

	return &b, nil
}

func (r *BookingRepository) CountBookings(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
