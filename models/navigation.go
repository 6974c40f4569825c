package models

import (
	"errors"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// PNRRequest is the body of POST /api/navigation/pnr
type PNRRequest struct {
	PNR string `json:"pnr"`
}

func (r *PNRRequest) Validate() error {
	if r.PNR == "" {
		return errors.New("pnr is required")
	}
	return nil
}

// GateRequest is the body of POST /api/navigation/gate
type GateRequest struct {
	GateID string `json:"gateId"`
}

func (r *GateRequest) Validate() error {
	if r.GateID == "" {
		return errors.New("gateId is required")
	}
	return nil
}

// LanguageRequest is the body of POST /api/navigation/language
type LanguageRequest struct {
	Lang string `json:"lang"`
}

// Parse returns the requested language
func (r *LanguageRequest) Parse() (station.Lang, error) {
	lang, ok := station.ParseLang(r.Lang)
	if !ok {
		return "", errors.New("lang must be one of en-IN, hi-IN")
	}
	return lang, nil
}

// LiveRequest is the body of POST /api/navigation/live
type LiveRequest struct {
	Enabled bool `json:"enabled"`
}

// LocationFixRequest is a browser geolocation reading
type LocationFixRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

// Validate checks the coordinates are present and in range
func (r *LocationFixRequest) Validate() error {
	if r.Latitude == nil || r.Longitude == nil {
		return errors.New("latitude and longitude are required")
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return errors.New("latitude out of range: must be between -90 and 90")
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return errors.New("longitude out of range: must be between -180 and 180")
	}
	return nil
}

// Fix converts the request into a location fix
func (r *LocationFixRequest) Fix() location.Fix {
	return location.Fix{
		Position: orb.Point{*r.Longitude, *r.Latitude},
		Accuracy: r.Accuracy,
	}
}

// LocationErrorRequest is a browser geolocation failure
type LocationErrorRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToError converts the request into a categorized location error
func (r *LocationErrorRequest) ToError() *location.Error {
	return &location.Error{Code: location.ParseCode(r.Code), Message: r.Message}
}
