package station

import (
	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
)

// Kind classifies a StationPoint
type Kind string

const (
	KindGate     Kind = "gate"
	KindPlatform Kind = "platform"
	KindPOI      Kind = "poi"
	KindPathNode Kind = "path-node"
)

// Lang is a BCP 47 tag for one of the two supported instruction languages
type Lang string

const (
	LangEnglish Lang = "en-IN"
	LangHindi   Lang = "hi-IN"
)

// SupportedLangs returns the languages every instruction is authored in
func SupportedLangs() []Lang {
	return []Lang{LangEnglish, LangHindi}
}

// ParseLang maps a tag (or its bare language prefix) to a supported Lang.
func ParseLang(tag string) (Lang, bool) {
	switch tag {
	case "en-IN", "en":
		return LangEnglish, true
	case "hi-IN", "hi":
		return LangHindi, true
	}
	return "", false
}

// Phrase is a piece of text authored in both supported languages
type Phrase struct {
	En string `json:"en" yaml:"en" validate:"required"`
	Hi string `json:"hi" yaml:"hi" validate:"required"`
}

// In returns the phrase in lang, falling back to English
func (p Phrase) In(lang Lang) string {
	if lang == LangHindi && p.Hi != "" {
		return p.Hi
	}
	return p.En
}

// StationPoint is a named location on the station map.
// Points are built once from the station table and never mutated.
type StationPoint struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     Kind       `json:"kind"`
	Category string     `json:"category,omitempty"` // POIs only: escalator, stairs, lift, ...
	Offset   geo.Offset `json:"offset"`             // meters from the map origin
	Coord    orb.Point  `json:"coord"`              // [lng, lat]
}

// Instruction is one leg of an authored route
type Instruction struct {
	ID       string   `json:"id"`
	Text     Phrase   `json:"text"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Via      []string `json:"via"`
	Distance float64  `json:"distance"` // author supplied, display only

	// CumulativeDistanceToTarget is the distance from the route start to To,
	// set by the route materializer. nil when To did not resolve.
	CumulativeDistanceToTarget *float64 `json:"cumulativeDistanceToTarget,omitempty"`
}

// Route is the ordered list of instructions for one gate/platform pair
type Route struct {
	Key          string        `json:"key"`
	Instructions []Instruction `json:"instructions"`
}

// Booking is a PNR record
type Booking struct {
	PNR                   string `json:"pnr"`
	TrainNumber           string `json:"trainNumber"`
	TrainName             string `json:"trainName"`
	PlatformNumber        string `json:"platformNumber"`
	CoachDetails          string `json:"coachDetails"`
	DestinationPlatformID string `json:"destinationPlatformId"`
}
