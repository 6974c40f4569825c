// Package sim walks a passenger along a materialized path at constant
// speed.
//
// The Simulator is a plain state machine. It owns no timer: whoever runs
// it calls Tick with the elapsed period, one call at a time. That keeps
// every tick atomic and makes the walk reproducible in tests.
//
//	Idle ──Start──▶ Running ──(end of path)──▶ Completed
//	                  │  ▲
//	            Cancel│  │Start (resume)
//	                  ▼  │
//	               Cancelled
//
// Reset moves any state back to Idle with a new path.
package sim

import (
	"errors"
	"time"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
	"github.com/ksai0398/railway-navigation-app/internal/route"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/internal/voice"
)

const (
	// DefaultSpeed is the simulated walking speed in meters per second.
	DefaultSpeed = 2.0
	// DefaultTickPeriod is how often a running walk is advanced.
	DefaultTickPeriod = 50 * time.Millisecond
)

var (
	// ErrPathTooShort is returned by Start when the path has fewer than two points.
	ErrPathTooShort = errors.New("path needs at least two points")
	// ErrCompleted is returned by Start after the walk reached its destination.
	ErrCompleted = errors.New("walk already completed")
)

// State of the simulator
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a copy of the simulation state
type Snapshot struct {
	State            State      `json:"state"`
	Traveled         float64    `json:"traveled"`
	TotalLength      float64    `json:"totalLength"`
	InstructionIndex int        `json:"instructionIndex"`
	Position         *orb.Point `json:"position,omitempty"`
	Bearing          *float64   `json:"bearing,omitempty"`
}

// Simulator moves a walker along a route.Path
type Simulator struct {
	path     route.Path
	speed    float64
	voice    voice.Announcer
	lang     station.Lang
	observer func(Event)

	state    State
	elapsed  time.Duration // walking time; traveled is speed * elapsed
	traveled float64
	index    int
	position *orb.Point
	bearing  *float64
}

// New creates an Idle simulator for path. speed is in meters per second;
// a non-positive speed falls back to DefaultSpeed.
func New(path route.Path, speed float64, announcer voice.Announcer) *Simulator {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	if announcer == nil {
		announcer = voice.Nop{}
	}
	s := &Simulator{
		speed: speed,
		voice: announcer,
		lang:  station.LangEnglish,
	}
	s.reset(path)
	return s
}

// OnEvent registers the observer called synchronously for every event
func (s *Simulator) OnEvent(fn func(Event)) {
	s.observer = fn
}

// SetLanguage changes the language of subsequent announcements
func (s *Simulator) SetLanguage(lang station.Lang) {
	s.lang = lang
}

// State returns the current state
func (s *Simulator) State() State {
	return s.state
}

// Path returns the path being walked
func (s *Simulator) Path() route.Path {
	return s.path
}

// Snapshot returns a copy of the current state
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		State:            s.state,
		Traveled:         s.traveled,
		TotalLength:      s.path.TotalLength(),
		InstructionIndex: s.index,
	}
	if s.position != nil {
		p := *s.position
		snap.Position = &p
	}
	if s.bearing != nil {
		b := *s.bearing
		snap.Bearing = &b
	}
	return snap
}

// CurrentInstruction returns the instruction the walker is on, if any
func (s *Simulator) CurrentInstruction() (station.Instruction, bool) {
	if s.index < 0 || s.index >= len(s.path.Instructions) {
		return station.Instruction{}, false
	}
	return s.path.Instructions[s.index], true
}

// Start begins or resumes the walk. A fresh walk places the walker on the
// first point and announces the first instruction. Start while Running is
// a no-op.
func (s *Simulator) Start() error {
	switch s.state {
	case Running:
		return nil
	case Completed:
		return ErrCompleted
	}
	if len(s.path.Points) < 2 {
		return ErrPathTooShort
	}

	if s.traveled == 0 {
		first := s.path.Points[0].Coord
		s.position = &first
		if ins, ok := s.CurrentInstruction(); ok {
			s.voice.Announce(ins.Text.In(s.lang), s.lang)
			s.emit(InstructionChanged{Index: s.index, Instruction: &ins})
		}
	}
	s.setState(Running)
	return nil
}

// Tick advances a running walk by period. It does nothing unless Running.
func (s *Simulator) Tick(period time.Duration) {
	if s.state != Running {
		return
	}

	s.elapsed += period
	s.traveled = s.speed * s.elapsed.Seconds()
	total := s.path.TotalLength()

	if s.traveled >= total {
		s.traveled = total
		last := s.path.Points[len(s.path.Points)-1].Coord
		s.position = &last
		s.voice.Announce(voice.DestinationReached.In(s.lang), s.lang)
		// Clear the speaking flag without cutting the message off.
		if d, ok := s.voice.(interface{ Done() }); ok {
			d.Done()
		}
		s.setState(Completed)
		s.emit(Arrived{Traveled: s.traveled, Position: last})
		return
	}

	pts := s.path.Points
	for i := 0; i < len(pts)-1; i++ {
		start, end := pts[i], pts[i+1]
		if s.traveled < start.CumulativeDistance || s.traveled > end.CumulativeDistance {
			continue
		}

		segLen := end.CumulativeDistance - start.CumulativeDistance
		fraction := 0.0
		if segLen > 0 {
			fraction = (s.traveled - start.CumulativeDistance) / segLen
		}
		pos := geo.Interpolate(start.Coord, end.Coord, fraction)
		bearing := geo.BearingBetween(start.Coord, end.Coord)
		s.position = &pos
		s.bearing = &bearing
		s.emit(Moved{Traveled: s.traveled, Position: pos, Bearing: bearing})
		break
	}

	// At most one step per tick, even if several targets were passed.
	if ins, ok := s.CurrentInstruction(); ok {
		target := ins.CumulativeDistanceToTarget
		if target != nil && *target <= s.traveled {
			s.index++
			next, more := s.CurrentInstruction()
			if more {
				s.voice.Announce(next.Text.In(s.lang), s.lang)
				s.emit(InstructionChanged{Index: s.index, Instruction: &next})
			} else {
				s.emit(InstructionChanged{Index: s.index})
			}
		}
	}
}

// Cancel stops a running walk, keeping the distance traveled and the
// instruction index so Start can resume. Returns false if not Running.
func (s *Simulator) Cancel() bool {
	if s.state != Running {
		return false
	}
	s.voice.Stop()
	s.bearing = nil
	s.setState(Cancelled)
	return true
}

// Reset replaces the path and returns to Idle with all progress cleared.
func (s *Simulator) Reset(path route.Path) {
	if s.state == Running {
		s.voice.Stop()
	}
	prev := s.state
	s.reset(path)
	if prev != Idle {
		s.emit(StateChanged{From: prev, To: Idle})
	}
}

func (s *Simulator) reset(path route.Path) {
	s.path = path
	s.state = Idle
	s.elapsed = 0
	s.traveled = 0
	s.index = 0
	s.bearing = nil
	s.position = nil
	if len(path.Points) > 0 {
		first := path.Points[0].Coord
		s.position = &first
	}
}

func (s *Simulator) setState(to State) {
	from := s.state
	s.state = to
	if from != to {
		s.emit(StateChanged{From: from, To: to})
	}
}

func (s *Simulator) emit(e Event) {
	if s.observer != nil {
		s.observer(e)
	}
}
