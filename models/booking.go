package models

import (
	"errors"
	"time"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Booking is one row of the bookings table
type Booking struct {
	PNR                   string     `db:"pnr" json:"pnr"`
	TrainNumber           string     `db:"train_number" json:"trainNumber"`
	TrainName             string     `db:"train_name" json:"trainName"`
	PlatformNumber        string     `db:"platform_number" json:"platformNumber"`
	CoachDetails          string     `db:"coach_details" json:"coachDetails"`
	DestinationPlatformID string     `db:"destination_platform_id" json:"destinationPlatformId"`
	UpdatedAt             *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Validate checks if the Booking model has valid data
func (b *Booking) Validate() error {
	if b.PNR == "" {
		return errors.New("pnr is required")
	}
	if b.TrainNumber == "" {
		return errors.New("train_number is required")
	}
	if b.DestinationPlatformID == "" {
		return errors.New("destination_platform_id is required")
	}
	return nil
}

// ToStation converts the row to the domain record
func (b *Booking) ToStation() station.Booking {
	return station.Booking{
		PNR:                   b.PNR,
		TrainNumber:           b.TrainNumber,
		TrainName:             b.TrainName,
		PlatformNumber:        b.PlatformNumber,
		CoachDetails:          b.CoachDetails,
		DestinationPlatformID: b.DestinationPlatformID,
	}
}

// BookingFromStation converts a domain record to a row
func BookingFromStation(s station.Booking) Booking {
	return Booking{
		PNR:                   s.PNR,
		TrainNumber:           s.TrainNumber,
		TrainName:             s.TrainName,
		PlatformNumber:        s.PlatformNumber,
		CoachDetails:          s.CoachDetails,
		DestinationPlatformID: s.DestinationPlatformID,
	}
}
