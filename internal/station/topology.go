// Package station holds the static station model: named points, the
// authored gate-to-platform routes and the booking (PNR) table.
package station

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

var (
	// ErrNoRoute is returned when no route is authored for a gate/platform pair.
	ErrNoRoute = errors.New("no path found")
	// ErrUnknownGate is returned when a gate id is not a gate of this station.
	ErrUnknownGate = errors.New("unknown gate")
	// ErrUnknownPlatform is returned when a platform id is not a platform of this station.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Topology is the immutable station table
type Topology struct {
	name     string
	origin   orb.Point
	points   map[string]StationPoint
	order    []string
	routes   map[string]Route
	bookings []Booking
}

// RouteKey builds the lookup key for a gate/platform pair
func RouteKey(gateID, platformID string) string {
	return gateID + "-" + platformID
}

// Name returns the station display name
func (t *Topology) Name() string {
	return t.name
}

// Origin returns the geographic coordinate of the map origin
func (t *Topology) Origin() orb.Point {
	return t.origin
}

// Point resolves a point id
func (t *Topology) Point(id string) (StationPoint, bool) {
	p, ok := t.points[id]
	return p, ok
}

// Points returns every point in table order
func (t *Topology) Points() []StationPoint {
	out := make([]StationPoint, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.points[id])
	}
	return out
}

// PointsOfKind returns the points of one kind in table order
func (t *Topology) PointsOfKind(kind Kind) []StationPoint {
	var out []StationPoint
	for _, id := range t.order {
		if p := t.points[id]; p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// IsGate reports whether id names a gate
func (t *Topology) IsGate(id string) bool {
	p, ok := t.points[id]
	return ok && p.Kind == KindGate
}

// Route looks up the authored route for a gate/platform pair.
// A miss is ErrNoRoute: not every pair has a route.
func (t *Topology) Route(gateID, platformID string) (Route, error) {
	key := RouteKey(gateID, platformID)
	r, ok := t.routes[key]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrNoRoute, key)
	}
	// Hand out a copy so callers can annotate instructions freely.
	instructions := make([]Instruction, len(r.Instructions))
	copy(instructions, r.Instructions)
	return Route{Key: r.Key, Instructions: instructions}, nil
}

// RouteKeys returns every authored route key, sorted
func (t *Topology) RouteKeys() []string {
	keys := make([]string, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bookings returns the seed booking table
func (t *Topology) Bookings() []Booking {
	out := make([]Booking, len(t.bookings))
	copy(out, t.bookings)
	return out
}

// Validate checks the authored routes: every referenced id resolves, the
// first leg starts at the route's gate, and each leg starts where the
// previous one ended.
func (t *Topology) Validate() error {
	var errs []error
	for key, r := range t.routes {
		if len(r.Instructions) == 0 {
			errs = append(errs, fmt.Errorf("route %s: no instructions", key))
			continue
		}
		gate, ok := t.points[r.Instructions[0].From]
		if !ok || gate.Kind != KindGate {
			errs = append(errs, fmt.Errorf("route %s: first leg does not start at a gate", key))
		}
		for i, ins := range r.Instructions {
			if i > 0 && ins.From != r.Instructions[i-1].To {
				errs = append(errs, fmt.Errorf("route %s: leg %s starts at %s, previous leg ended at %s",
					key, ins.ID, ins.From, r.Instructions[i-1].To))
			}
			if _, ok := t.points[ins.To]; !ok {
				errs = append(errs, fmt.Errorf("route %s: leg %s targets unknown point %s", key, ins.ID, ins.To))
			}
			for _, v := range ins.Via {
				if _, ok := t.points[v]; !ok {
					errs = append(errs, fmt.Errorf("route %s: leg %s passes unknown point %s", key, ins.ID, v))
				}
			}
		}
		last := r.Instructions[len(r.Instructions)-1]
		if key != RouteKey(r.Instructions[0].From, last.To) {
			errs = append(errs, fmt.Errorf("route %s: key does not match %s", key, RouteKey(r.Instructions[0].From, last.To)))
		}
	}
	for _, b := range t.bookings {
		if p, ok := t.points[b.DestinationPlatformID]; !ok || p.Kind != KindPlatform {
			errs = append(errs, fmt.Errorf("booking %s: unknown platform %s", b.PNR, b.DestinationPlatformID))
		}
	}
	return errors.Join(errs...)
}
