package mapsink

import (
	"fmt"
	"io"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Layer names carried in every feature's "layer" property
const (
	LayerTopology = "topology"
	LayerRoute    = "route"
	LayerUser     = "user"
)

// GeoJSON renders a FeatureCollection for web map front-ends
// (Google Maps data layers, Mapbox sources).
type GeoJSON struct {
	gateEvents

	mu       sync.Mutex
	topology []*geojson.Feature
	route    []*geojson.Feature
	user     []*geojson.Feature
}

// NewGeoJSON creates an empty GeoJSON sink
func NewGeoJSON() *GeoJSON {
	return &GeoJSON{}
}

func (g *GeoJSON) ContentType() string { return "application/geo+json" }

func (g *GeoJSON) RenderTopology(topo *station.Topology) error {
	if topo == nil {
		return fmt.Errorf("nil topology")
	}

	var features []*geojson.Feature
	for _, p := range topo.Points() {
		if p.Kind == station.KindPathNode {
			continue
		}
		f := geojson.NewFeature(p.Coord)
		f.ID = p.ID
		f.Properties["layer"] = LayerTopology
		f.Properties["name"] = p.Name
		f.Properties["kind"] = string(p.Kind)
		if p.Category != "" {
			f.Properties["category"] = p.Category
		}
		features = append(features, f)
	}

	g.mu.Lock()
	g.topology = features
	g.mu.Unlock()
	return nil
}

func (g *GeoJSON) RenderRoute(v View) error {
	var features []*geojson.Feature
	if len(v.RoutePoints) > 0 {
		line := make(orb.LineString, 0, len(v.RoutePoints))
		for _, p := range v.RoutePoints {
			line = append(line, p.Coord)
		}
		f := geojson.NewFeature(line)
		f.ID = v.RouteKey()
		f.Properties["layer"] = LayerRoute
		f.Properties["gate"] = v.SelectedGateID
		f.Properties["platform"] = v.DestinationPlatformID
		f.Properties["length"] = v.RoutePoints[len(v.RoutePoints)-1].CumulativeDistance
		f.Properties["instructionIndex"] = v.InstructionIndex

		instructions := make([]map[string]interface{}, 0, len(v.Instructions))
		for _, ins := range v.Instructions {
			item := map[string]interface{}{
				"id":       ins.ID,
				"text":     ins.Text.In(v.Lang),
				"to":       ins.To,
				"distance": ins.Distance,
			}
			if ins.CumulativeDistanceToTarget != nil {
				item["cumulativeDistanceToTarget"] = *ins.CumulativeDistanceToTarget
			}
			instructions = append(instructions, item)
		}
		f.Properties["instructions"] = instructions
		features = append(features, f)
	}

	g.mu.Lock()
	g.route = features
	g.mu.Unlock()
	return nil
}

func (g *GeoJSON) RenderUser(v View) error {
	var features []*geojson.Feature
	if v.UserPosition != nil {
		f := geojson.NewFeature(*v.UserPosition)
		f.ID = "user"
		f.Properties["layer"] = LayerUser
		f.Properties["arrived"] = v.Arrived
		if v.UserBearing != nil {
			f.Properties["bearing"] = *v.UserBearing
		}
		features = append(features, f)
	}

	g.mu.Lock()
	g.user = features
	g.mu.Unlock()
	return nil
}

// Collection returns the current drawing as one FeatureCollection
func (g *GeoJSON) Collection() *geojson.FeatureCollection {
	g.mu.Lock()
	defer g.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, layer := range [][]*geojson.Feature{g.topology, g.route, g.user} {
		for _, f := range layer {
			fc.Append(f)
		}
	}
	return fc
}

func (g *GeoJSON) WriteTo(w io.Writer) (int64, error) {
	data, err := g.Collection().MarshalJSON()
	if err != nil {
		return 0, fmt.Errorf("failed to encode feature collection: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}
