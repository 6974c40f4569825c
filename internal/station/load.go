package station

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
)

// defaultStationYAML is the authored station shipped with the binary.
//
//go:embed station.yaml
var defaultStationYAML []byte

type fileOrigin struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `yaml:"lng" validate:"gte=-180,lte=180"`
}

type filePoint struct {
	ID       string  `yaml:"id" validate:"required"`
	Name     string  `yaml:"name" validate:"required"`
	Kind     Kind    `yaml:"kind" validate:"required,oneof=gate platform poi path-node"`
	Category string  `yaml:"category"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
}

type fileInstruction struct {
	ID       string   `yaml:"id" validate:"required"`
	Text     Phrase   `yaml:"text" validate:"required"`
	From     string   `yaml:"from" validate:"required"`
	To       string   `yaml:"to" validate:"required"`
	Via      []string `yaml:"via"`
	Distance float64  `yaml:"distance" validate:"gte=0"`
}

type fileBooking struct {
	PNR                   string `yaml:"pnr" validate:"required,numeric,len=10"`
	TrainNumber           string `yaml:"train_number" validate:"required"`
	TrainName             string `yaml:"train_name"`
	PlatformNumber        string `yaml:"platform_number" validate:"required"`
	CoachDetails          string `yaml:"coach_details"`
	DestinationPlatformID string `yaml:"destination_platform_id" validate:"required"`
}

type stationFile struct {
	Name     string                       `yaml:"name" validate:"required"`
	Origin   fileOrigin                   `yaml:"origin" validate:"required"`
	Points   []filePoint                  `yaml:"points" validate:"required,min=1,dive"`
	Routes   map[string][]fileInstruction `yaml:"routes" validate:"required,dive,min=1,dive"`
	Bookings []fileBooking                `yaml:"bookings" validate:"dive"`
}

// Default loads the station table embedded in the binary
func Default() (*Topology, error) {
	return Parse(defaultStationYAML)
}

// LoadFile loads a station table from a YAML file
func LoadFile(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a station table and projects every point
// onto the geographic origin. Route references are not checked here;
// call Validate for that.
func Parse(data []byte) (*Topology, error) {
	var f stationFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse station file: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid station file: %w", err)
	}

	origin := orb.Point{f.Origin.Lng, f.Origin.Lat}
	t := &Topology{
		name:   f.Name,
		origin: origin,
		points: make(map[string]StationPoint, len(f.Points)),
		order:  make([]string, 0, len(f.Points)),
		routes: make(map[string]Route, len(f.Routes)),
	}

	for _, p := range f.Points {
		if _, dup := t.points[p.ID]; dup {
			return nil, fmt.Errorf("invalid station file: duplicate point %s", p.ID)
		}
		off := geo.Offset{X: p.X, Y: p.Y}
		t.points[p.ID] = StationPoint{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     p.Kind,
			Category: p.Category,
			Offset:   off,
			Coord:    geo.Project(origin, off),
		}
		t.order = append(t.order, p.ID)
	}

	for key, legs := range f.Routes {
		r := Route{Key: key, Instructions: make([]Instruction, 0, len(legs))}
		for _, leg := range legs {
			r.Instructions = append(r.Instructions, Instruction{
				ID:       leg.ID,
				Text:     leg.Text,
				From:     leg.From,
				To:       leg.To,
				Via:      append([]string(nil), leg.Via...),
				Distance: leg.Distance,
			})
		}
		t.routes[key] = r
	}

	for _, b := range f.Bookings {
		t.bookings = append(t.bookings, Booking{
			PNR:                   b.PNR,
			TrainNumber:           b.TrainNumber,
			TrainName:             b.TrainName,
			PlatformNumber:        b.PlatformNumber,
			CoachDetails:          b.CoachDetails,
			DestinationPlatformID: b.DestinationPlatformID,
		})
	}

	return t, nil
}
