package repository

import (
	"context"
	"errors"

	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/models"
)

// ErrBookingNotFound is returned when no booking has the requested PNR.
// It is an expected outcome, not a failure of the store.
var ErrBookingNotFound = errors.New("booking not found")

// StaticBookingRepository serves bookings from the station table in memory
type StaticBookingRepository struct {
	bookings map[string]models.Booking
}

// NewStaticBookingRepository indexes bookings by PNR
func NewStaticBookingRepository(bookings []station.Booking) *StaticBookingRepository {
	m := make(map[string]models.Booking, len(bookings))
	for _, b := range bookings {
		m[b.PNR] = models.BookingFromStation(b)
	}
	return &StaticBookingRepository{bookings: m}
}

// GetBookingByPNR returns the booking with exactly this PNR
func (r *StaticBookingRepository) GetBookingByPNR(_ context.Context, pnr string) (*models.Booking, error) {
	b, ok := r.bookings[pnr]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

// CountBookings returns the number of bookings
func (r *StaticBookingRepository) CountBookings(context.Context) (int, error) {
	return len(r.bookings), nil
}

// Ping always succeeds
func (r *StaticBookingRepository) Ping(context.Context) error {
	return nil
}
