// Package location is the boundary to an external position source such as
// browser geolocation.
package location

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// DefaultMaxWait bounds how long a subscription waits for a fresh fix
// before reporting a timeout.
const DefaultMaxWait = 10 * time.Second

// Code categorizes a location failure
type Code string

const (
	PermissionDenied    Code = "permission-denied"
	PositionUnavailable Code = "position-unavailable"
	Timeout             Code = "timeout"
	Unknown             Code = "unknown"
)

// ParseCode maps a client-reported code to a Code; anything unrecognized is Unknown
func ParseCode(s string) Code {
	switch c := Code(s); c {
	case PermissionDenied, PositionUnavailable, Timeout:
		return c
	}
	return Unknown
}

var messages = map[Code]station.Phrase{
	PermissionDenied: {
		En: "Location permission denied. Please allow location access to use live tracking.",
		Hi: "स्थान की अनुमति नहीं मिली। लाइव ट्रैकिंग के लिए स्थान की अनुमति दें।",
	},
	PositionUnavailable: {
		En: "Your location is currently unavailable.",
		Hi: "आपका स्थान अभी उपलब्ध नहीं है।",
	},
	Timeout: {
		En: "Timed out while waiting for your location.",
		Hi: "आपके स्थान की प्रतीक्षा में समय समाप्त हो गया।",
	},
	Unknown: {
		En: "An unknown error occurred while getting your location.",
		Hi: "आपका स्थान प्राप्त करते समय एक अज्ञात त्रुटि हुई।",
	},
}

// Message returns the user-facing text for a code
func (c Code) Message() station.Phrase {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[Unknown]
}

// Error is a categorized failure from a Source
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("location %s", e.Code)
	}
	return fmt.Sprintf("location %s: %s", e.Code, e.Message)
}

// Fix is one position reading
type Fix struct {
	Position orb.Point
	Accuracy float64
	Time     time.Time
}

// Source delivers position fixes until the subscription is released.
// Callbacks may run on any goroutine.
type Source interface {
	Subscribe(onUpdate func(Fix), onError func(error)) (Subscription, error)
}

// Subscription is a live registration with a Source
type Subscription interface {
	Unsubscribe()
}
