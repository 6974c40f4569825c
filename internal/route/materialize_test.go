package route

import (
	"errors"
	"testing"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// mapResolver is a tiny in-memory topology for edge cases
type mapResolver map[string]station.StationPoint

func (m mapResolver) Point(id string) (station.StationPoint, bool) {
	p, ok := m[id]
	return p, ok
}

func pt(id string, x, y float64) station.StationPoint {
	return station.StationPoint{ID: id, Name: id, Offset: geo.Offset{X: x, Y: y}}
}

func defaultTopology(t *testing.T) *station.Topology {
	t.Helper()
	topo, err := station.Default()
	if err != nil {
		t.Fatalf("station.Default() failed: %v", err)
	}
	return topo
}

func TestMaterializeGateAPlatform1(t *testing.T) {
	topo := defaultTopology(t)
	r, err := topo.Route("gate-a", "platform-1")
	if err != nil {
		t.Fatal(err)
	}

	path := Materialize(topo, r.Instructions, "gate-a")

	wantIDs := []string{
		"gate-a", "node-ga-1", "node-ga-2", "node-ga-wh-1", "waiting-hall",
		"node-wh-e1-1", "escalator-1", "node-e1-p1-1", "node-e1-p1-2", "platform-1",
	}
	if len(path.Points) != len(wantIDs) {
		t.Fatalf("expected %d points, got %d", len(wantIDs), len(path.Points))
	}
	for i, id := range wantIDs {
		if path.Points[i].ID != id {
			t.Errorf("point %d = %s, expected %s", i, path.Points[i].ID, id)
		}
	}

	wantTargets := []float64{20, 50, 90, 140}
	for i, want := range wantTargets {
		got := path.Instructions[i].CumulativeDistanceToTarget
		if got == nil {
			t.Fatalf("instruction %d target distance unset", i)
		}
		if *got != want {
			t.Errorf("instruction %d target distance = %v, expected %v", i, *got, want)
		}
	}

	if path.TotalLength() != 140 {
		t.Errorf("TotalLength = %v, expected 140", path.TotalLength())
	}
	if len(path.LineString()) != len(wantIDs) {
		t.Errorf("LineString has %d vertices", len(path.LineString()))
	}
}

func TestMaterializeAllRoutesProperties(t *testing.T) {
	topo := defaultTopology(t)

	for _, key := range topo.RouteKeys() {
		t.Run(key, func(t *testing.T) {
			var gateID, platformID string
			for _, g := range topo.PointsOfKind(station.KindGate) {
				for _, p := range topo.PointsOfKind(station.KindPlatform) {
					if station.RouteKey(g.ID, p.ID) == key {
						gateID, platformID = g.ID, p.ID
					}
				}
			}
			r, err := topo.Route(gateID, platformID)
			if err != nil {
				t.Fatal(err)
			}

			path := Materialize(topo, r.Instructions, gateID)

			if path.Points[0].CumulativeDistance != 0 {
				t.Errorf("first point cumulative distance = %v", path.Points[0].CumulativeDistance)
			}
			for i := 1; i < len(path.Points); i++ {
				if path.Points[i].CumulativeDistance < path.Points[i-1].CumulativeDistance {
					t.Errorf("cumulative distance decreases at %d", i)
				}
			}
			if len(path.Instructions) != len(r.Instructions) {
				t.Errorf("instruction count %d != %d", len(path.Instructions), len(r.Instructions))
			}
			if path.Points[len(path.Points)-1].ID != platformID {
				t.Errorf("path ends at %s, expected %s", path.Points[len(path.Points)-1].ID, platformID)
			}

			// Authored leg distances match the geometry.
			prev := 0.0
			for _, ins := range path.Instructions {
				if ins.CumulativeDistanceToTarget == nil {
					t.Fatalf("leg %s target unset", ins.ID)
				}
				if leg := *ins.CumulativeDistanceToTarget - prev; leg != ins.Distance {
					t.Errorf("leg %s measures %v m, authored %v m", ins.ID, leg, ins.Distance)
				}
				prev = *ins.CumulativeDistanceToTarget
			}
		})
	}
}

func TestMaterializeUnknownGate(t *testing.T) {
	topo := defaultTopology(t)
	r, _ := topo.Route("gate-a", "platform-1")

	path := Materialize(topo, r.Instructions, "gate-x")
	if !path.Empty() {
		t.Errorf("expected empty path, got %d points", len(path.Points))
	}
	if path.TotalLength() != 0 {
		t.Errorf("TotalLength of empty path = %v", path.TotalLength())
	}
}

func TestMaterializeSkipsUnresolvedIDs(t *testing.T) {
	points := mapResolver{
		"g": pt("g", 0, 0),
		"a": pt("a", 0, 3),
		"b": pt("b", 4, 3),
	}
	instructions := []station.Instruction{
		{ID: "1", From: "g", To: "a", Via: []string{"ghost"}},
		{ID: "2", From: "a", To: "missing", Via: []string{"b"}},
	}

	path := Materialize(points, instructions, "g")

	if len(path.Points) != 3 {
		t.Fatalf("expected 3 points (g, a, b), got %d", len(path.Points))
	}
	if got := path.Points[2].CumulativeDistance; got != 7 {
		t.Errorf("cumulative distance at b = %v, expected 7", got)
	}
	if len(path.Instructions) != 2 {
		t.Fatalf("instruction count = %d, expected 2", len(path.Instructions))
	}
	if d := path.Instructions[0].CumulativeDistanceToTarget; d == nil || *d != 3 {
		t.Errorf("instruction 1 target = %v, expected 3", d)
	}
	if path.Instructions[1].CumulativeDistanceToTarget != nil {
		t.Error("unresolved target should leave the distance unset")
	}
	if instructions[0].CumulativeDistanceToTarget != nil {
		t.Error("Materialize mutated its input")
	}
}

func TestMaterializeZeroLengthLeg(t *testing.T) {
	points := mapResolver{
		"g": pt("g", 0, 0),
		"n": pt("n", 0, 0),
		"p": pt("p", 0, 10),
	}
	path := Materialize(points, []station.Instruction{{ID: "1", From: "g", To: "p", Via: []string{"n"}}}, "g")

	if path.Points[1].CumulativeDistance != 0 || path.Points[2].CumulativeDistance != 10 {
		t.Errorf("unexpected distances: %v, %v", path.Points[1].CumulativeDistance, path.Points[2].CumulativeDistance)
	}
}

func TestCache(t *testing.T) {
	topo := defaultTopology(t)
	c := NewCache(topo, 4)

	p1, err := c.Get("gate-a", "platform-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p1.TotalLength() != 140 {
		t.Errorf("TotalLength = %v", p1.TotalLength())
	}
	if _, err := c.Get("gate-a", "platform-1"); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("cache holds %d paths, expected 1", c.Len())
	}

	_, err = c.Get("gate-a", "platform-99")
	if !errors.Is(err, station.ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}
