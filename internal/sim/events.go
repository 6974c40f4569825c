package sim

import (
	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// Event is a marker for everything a Simulator reports to its observer.
type Event interface{ isEvent() }

// StateChanged signals a state machine transition.
type StateChanged struct {
	From State `json:"from"`
	To   State `json:"to"`
}

func (StateChanged) isEvent() {}

// InstructionChanged signals that the current instruction advanced or was
// (re)announced. Instruction is nil once the index runs past the last leg.
type InstructionChanged struct {
	Index       int                  `json:"index"`
	Instruction *station.Instruction `json:"instruction,omitempty"`
}

func (InstructionChanged) isEvent() {}

// Moved is emitted on every tick that leaves the walker on the path.
type Moved struct {
	Traveled float64   `json:"traveled"`
	Position orb.Point `json:"position"`
	Bearing  float64   `json:"bearing"`
}

func (Moved) isEvent() {}

// Arrived is emitted once when the walker reaches the final point.
type Arrived struct {
	Traveled float64   `json:"traveled"`
	Position orb.Point `json:"position"`
}

func (Arrived) isEvent() {}
