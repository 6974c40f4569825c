// Package route flattens an authored route into the point sequence a
// walker follows and annotates it with cumulative distances.
package route

import (
	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// PathPoint is a StationPoint taking part in a materialized path
type PathPoint struct {
	station.StationPoint
	CumulativeDistance float64 `json:"cumulativeDistance"` // meters from the first point
}

// Path is the flattened, distance-annotated walk for one route.
// An empty Path means there is nothing to render.
type Path struct {
	Points       []PathPoint           `json:"points"`
	Instructions []station.Instruction `json:"instructions"`
}

// Resolver resolves point ids; *station.Topology satisfies it
type Resolver interface {
	Point(id string) (station.StationPoint, bool)
}

// Materialize expands instructions, starting at gateID, into the ordered
// point sequence: the gate, then each leg's via nodes and its target.
// Ids that do not resolve are skipped. An unknown gate yields an empty path.
func Materialize(points Resolver, instructions []station.Instruction, gateID string) Path {
	gate, ok := points.Point(gateID)
	if !ok {
		return Path{}
	}

	seq := []station.StationPoint{gate}
	for _, ins := range instructions {
		for _, id := range ins.Via {
			if p, ok := points.Point(id); ok {
				seq = append(seq, p)
			}
		}
		if p, ok := points.Point(ins.To); ok {
			seq = append(seq, p)
		}
	}

	path := Path{
		Points:       make([]PathPoint, len(seq)),
		Instructions: make([]station.Instruction, len(instructions)),
	}
	for i, p := range seq {
		path.Points[i] = PathPoint{StationPoint: p}
		if i > 0 {
			path.Points[i].CumulativeDistance = path.Points[i-1].CumulativeDistance +
				geo.Distance(seq[i-1].Offset, p.Offset)
		}
	}

	for i, ins := range instructions {
		ins.Via = append([]string(nil), ins.Via...)
		ins.CumulativeDistanceToTarget = nil
		for _, p := range path.Points {
			if p.ID == ins.To {
				d := p.CumulativeDistance
				ins.CumulativeDistanceToTarget = &d
				break
			}
		}
		path.Instructions[i] = ins
	}

	return path
}

// Empty reports whether the path has no points
func (p Path) Empty() bool {
	return len(p.Points) == 0
}

// TotalLength returns the cumulative distance of the last point
func (p Path) TotalLength() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].CumulativeDistance
}

// LineString returns the geographic polyline of the path
func (p Path) LineString() orb.LineString {
	ls := make(orb.LineString, len(p.Points))
	for i, pt := range p.Points {
		ls[i] = pt.Coord
	}
	return ls
}
