// Package mapsink renders the station, the selected route and the walker.
//
// Every renderer implements Sink. The navigator never depends on which one
// is in use: it hands each of them the same View.
package mapsink

import (
	"fmt"
	"io"
	"sync"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/route"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// View is everything a renderer may draw
type View struct {
	Topology              *station.Topology
	SelectedGateID        string
	DestinationPlatformID string
	RoutePoints           []route.PathPoint
	UserPosition          *orb.Point
	UserBearing           *float64
	InstructionIndex      int
	Instructions          []station.Instruction
	Lang                  station.Lang
	Arrived               bool
}

// RouteKey is the table key of the route being shown, or "" when none
func (v View) RouteKey() string {
	if v.SelectedGateID == "" || v.DestinationPlatformID == "" {
		return ""
	}
	return station.RouteKey(v.SelectedGateID, v.DestinationPlatformID)
}

// Sink is a map renderer
type Sink interface {
	RenderTopology(topo *station.Topology) error
	RenderRoute(v View) error
	RenderUser(v View) error
	OnGateSelected(fn func(gateID string))
}

// Encoder is a Sink whose current drawing can be written out
type Encoder interface {
	Sink
	ContentType() string
	WriteTo(w io.Writer) (int64, error)
}

// Draw renders every layer of v onto s
func Draw(s Sink, v View) error {
	if v.Topology != nil {
		if err := s.RenderTopology(v.Topology); err != nil {
			return fmt.Errorf("failed to render topology: %w", err)
		}
	}
	if err := s.RenderRoute(v); err != nil {
		return fmt.Errorf("failed to render route: %w", err)
	}
	if err := s.RenderUser(v); err != nil {
		return fmt.Errorf("failed to render user: %w", err)
	}
	return nil
}

// gateEvents implements OnGateSelected for the renderers. SelectGate is
// what a renderer calls when someone clicks a gate marker.
type gateEvents struct {
	mu       sync.Mutex
	handlers []func(string)
}

func (g *gateEvents) OnGateSelected(fn func(gateID string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers = append(g.handlers, fn)
}

// SelectGate notifies every registered handler
func (g *gateEvents) SelectGate(gateID string) {
	g.mu.Lock()
	handlers := append([]func(string){}, g.handlers...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn(gateID)
	}
}
