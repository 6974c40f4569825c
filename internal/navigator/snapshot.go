package navigator

import (
	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/route"
	"github.com/ksai0398/railway-navigation-app/internal/sim"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	RunID              string               `json:"runId,omitempty"`
	Lang               station.Lang         `json:"lang"`
	Booking            *station.Booking     `json:"booking,omitempty"`
	GateID             string               `json:"gateId,omitempty"`
	RouteKey           string               `json:"routeKey,omitempty"`
	Message            string               `json:"message,omitempty"`
	Simulation         sim.Snapshot         `json:"simulation"`
	Live               location.State       `json:"live"`
	Speaking           bool                 `json:"speaking"`
	UserPosition       *orb.Point           `json:"userPosition,omitempty"`
	UserBearing        *float64             `json:"userBearing,omitempty"`
	CurrentInstruction *station.Instruction `json:"currentInstruction,omitempty"`
	Path               route.Path           `json:"path"`
}

func (n *Navigator) snapshot() Snapshot {
	simSnap := n.sim.Snapshot()
	live := n.adapter.State()

	snap := Snapshot{
		RunID:      n.runID,
		Lang:       n.lang,
		GateID:     n.gateID,
		RouteKey:   n.routeKey(),
		Simulation: simSnap,
		Live:       live,
		Speaking:   n.voice.Speaking(),
		Path:       n.path,
	}
	if n.booking != nil {
		b := *n.booking
		snap.Booking = &b
	}
	if n.message != nil {
		snap.Message = n.message.In(n.lang)
	}
	if ins, ok := n.sim.CurrentInstruction(); ok {
		snap.CurrentInstruction = &ins
	}
	snap.UserPosition, snap.UserBearing = n.userPosition(simSnap, live)
	return snap
}

// userPosition picks the live fix while live location is on, the
// simulated walker otherwise
func (n *Navigator) userPosition(simSnap sim.Snapshot, live location.State) (*orb.Point, *float64) {
	if live.Enabled {
		return live.Position, live.Bearing
	}
	return simSnap.Position, simSnap.Bearing
}

// view is the renderer input for the current state
func (n *Navigator) view() mapsink.View {
	simSnap := n.sim.Snapshot()
	pos, bearing := n.userPosition(simSnap, n.adapter.State())

	v := mapsink.View{
		Topology:         n.topo,
		SelectedGateID:   n.gateID,
		RoutePoints:      n.path.Points,
		UserPosition:     pos,
		UserBearing:      bearing,
		InstructionIndex: simSnap.InstructionIndex,
		Instructions:     n.path.Instructions,
		Lang:             n.lang,
		Arrived:          simSnap.State == sim.Completed,
	}
	if n.booking != nil {
		v.DestinationPlatformID = n.booking.DestinationPlatformID
	}
	return v
}
