// Package navigator owns one passenger's navigation session: the selected
// booking and gate, the simulated walk, live location and the renderers.
//
// All state lives on the goroutine running Run. Commands, simulator ticks
// and location callbacks arrive on channels and are handled one at a time,
// so nothing here needs a lock.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/route"
	"github.com/ksai0398/railway-navigation-app/internal/sim"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/internal/voice"
	"github.com/ksai0398/railway-navigation-app/models"
	"github.com/ksai0398/railway-navigation-app/repository"
)

var (
	// ErrLiveActive is returned by Start while live location drives the user position
	ErrLiveActive = errors.New("live location is active")
	// ErrNoRouteSelected is returned by Start before a booking and gate give a route
	ErrNoRouteSelected = errors.New("no route selected")
	// ErrStopped is returned once Run has exited
	ErrStopped = errors.New("navigator stopped")
)

// BookingLookup finds a booking by exact PNR
type BookingLookup interface {
	GetBookingByPNR(ctx context.Context, pnr string) (*models.Booking, error)
}

// Options configures a Navigator
type Options struct {
	Speed      float64       // meters per second
	TickPeriod time.Duration // simulator step
	Lang       station.Lang
	CacheSize  int
	Voice      voice.Announcer // nil logs announcements
	Sinks      []mapsink.Sink
}

// Navigator is the orchestrator. Create it with New and run it with Run.
type Navigator struct {
	topo     *station.Topology
	bookings BookingLookup
	paths    *route.Cache
	hub      *Hub
	voice    *voice.Tracker
	sim      *sim.Simulator
	adapter  *location.Adapter
	sinks    []mapsink.Sink
	period   time.Duration

	cmds  chan func()
	fixes chan location.Fix
	lerrs chan error
	done  chan struct{}

	// owned by the Run goroutine
	lang    station.Lang
	booking *station.Booking
	gateID  string
	path    route.Path
	message *station.Phrase
	runID   string
	ticker  *time.Ticker
	tickC   <-chan time.Time
}

// New creates a navigator over topo. Nothing happens until Run is called.
func New(topo *station.Topology, bookings BookingLookup, src location.Source, opts Options) *Navigator {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = sim.DefaultTickPeriod
	}
	if opts.Lang == "" {
		opts.Lang = station.LangEnglish
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	backend := opts.Voice
	if backend == nil {
		backend = voice.Logger{}
	}

	hub := NewHub()
	n := &Navigator{
		topo:     topo,
		bookings: bookings,
		paths:    route.NewCache(topo, opts.CacheSize),
		hub:      hub,
		voice:    voice.NewTracker(voice.Multi{backend, hubAnnouncer{hub: hub}}),
		adapter:  location.NewAdapter(src),
		sinks:    opts.Sinks,
		period:   opts.TickPeriod,
		cmds:     make(chan func()),
		fixes:    make(chan location.Fix, 16),
		lerrs:    make(chan error, 16),
		done:     make(chan struct{}),
		lang:     opts.Lang,
	}
	n.sim = sim.New(route.Path{}, opts.Speed, n.voice)
	n.sim.SetLanguage(n.lang)
	n.sim.OnEvent(n.onSimEvent)
	n.adapter.SetLanguage(n.lang)

	for _, s := range n.sinks {
		if err := s.RenderTopology(topo); err != nil {
			log.Printf("Navigator: map sink %T failed to draw topology: %v", s, err)
		}
		s.OnGateSelected(n.gateClicked)
	}
	return n
}

// Hub returns the event hub for streaming subscribers
func (n *Navigator) Hub() *Hub {
	return n.hub
}

// Topology returns the station being navigated
func (n *Navigator) Topology() *station.Topology {
	return n.topo
}

// Run processes commands until ctx is cancelled. The ticker and the
// location subscription are released before it returns.
func (n *Navigator) Run(ctx context.Context) error {
	defer close(n.done)
	log.Printf("Navigator: running for %s (tick %v)", n.topo.Name(), n.period)

	for {
		select {
		case <-ctx.Done():
			n.shutdown()
			log.Println("Navigator: stopped")
			return nil
		case cmd := <-n.cmds:
			cmd()
		case <-n.tickC:
			n.tick()
		case fix := <-n.fixes:
			n.applyFix(fix)
		case err := <-n.lerrs:
			n.applyLocationError(err)
		}
	}
}

// do runs fn on the Run goroutine and returns the resulting snapshot
func (n *Navigator) do(ctx context.Context, fn func() error) (Snapshot, error) {
	type result struct {
		snap Snapshot
		err  error
	}
	reply := make(chan result, 1)
	cmd := func() {
		err := fn()
		reply <- result{snap: n.snapshot(), err: err}
	}

	select {
	case n.cmds <- cmd:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-n.done:
		return Snapshot{}, ErrStopped
	}

	select {
	case r := <-reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// SelectPNR looks up a booking and makes its platform the destination.
// A miss returns an error wrapping repository.ErrBookingNotFound and
// leaves a user message in the snapshot.
func (n *Navigator) SelectPNR(ctx context.Context, pnr string) (Snapshot, error) {
	// the lookup may hit a database, so it runs on the caller's goroutine
	b, lookupErr := n.bookings.GetBookingByPNR(ctx, pnr)
	if lookupErr != nil && !errors.Is(lookupErr, repository.ErrBookingNotFound) {
		return Snapshot{}, fmt.Errorf("failed to look up pnr: %w", lookupErr)
	}

	return n.do(ctx, func() error {
		if lookupErr != nil {
			n.booking = nil
			n.loadRoute()
			n.setMessage(&voice.BookingNotFound)
			return fmt.Errorf("pnr %s: %w", pnr, repository.ErrBookingNotFound)
		}

		booking := b.ToStation()
		n.booking = &booking
		n.setMessage(nil)
		log.Printf("Navigator: pnr %s -> %s (train %s)", booking.PNR, booking.DestinationPlatformID, booking.TrainNumber)
		return n.loadRoute()
	})
}

// SelectGate sets the starting gate. With a booking selected this loads
// the route; a pair without an authored route returns station.ErrNoRoute.
func (n *Navigator) SelectGate(ctx context.Context, gateID string) (Snapshot, error) {
	return n.do(ctx, func() error {
		if !n.topo.IsGate(gateID) {
			return fmt.Errorf("gate %q: %w", gateID, station.ErrUnknownGate)
		}
		n.gateID = gateID
		return n.loadRoute()
	})
}

// Start begins or resumes the simulated walk
func (n *Navigator) Start(ctx context.Context) (Snapshot, error) {
	return n.do(ctx, func() error {
		if n.adapter.State().Enabled {
			return ErrLiveActive
		}
		if n.path.Empty() {
			return ErrNoRouteSelected
		}
		if err := n.sim.Start(); err != nil {
			return err
		}
		n.startTicker()
		n.render()
		return nil
	})
}

// Pause cancels a running walk, keeping its progress
func (n *Navigator) Pause(ctx context.Context) (Snapshot, error) {
	return n.do(ctx, func() error {
		n.stopTicker()
		n.sim.Cancel()
		n.render()
		return nil
	})
}

// SetLanguage switches announcements and messages to lang
func (n *Navigator) SetLanguage(ctx context.Context, lang station.Lang) (Snapshot, error) {
	return n.do(ctx, func() error {
		n.lang = lang
		n.sim.SetLanguage(lang)
		n.adapter.SetLanguage(lang)
		n.publish(EventState, n.sim.State())
		n.render()
		return nil
	})
}

// SetLive turns live location on or off. Turning it on cancels the
// simulated walk first; its progress is kept.
func (n *Navigator) SetLive(ctx context.Context, enabled bool) (Snapshot, error) {
	return n.do(ctx, func() error {
		if !enabled {
			n.adapter.Disable()
			n.publish(EventLocation, n.adapter.State())
			n.render()
			return nil
		}

		n.stopTicker()
		n.sim.Cancel()
		err := n.adapter.Enable(n.onFix, n.onLocationError)
		n.publish(EventLocation, n.adapter.State())
		n.render()
		return err
	})
}

// Snapshot returns the current session state
func (n *Navigator) Snapshot(ctx context.Context) (Snapshot, error) {
	return n.do(ctx, func() error { return nil })
}

// gateClicked is the OnGateSelected handler for every sink
func (n *Navigator) gateClicked(gateID string) {
	if _, err := n.SelectGate(context.Background(), gateID); err != nil {
		log.Printf("Navigator: gate %s from map: %v", gateID, err)
	}
}

// onFix and onLocationError run on the source's goroutines
func (n *Navigator) onFix(fix location.Fix) {
	select {
	case n.fixes <- fix:
	case <-n.done:
	}
}

func (n *Navigator) onLocationError(err error) {
	select {
	case n.lerrs <- err:
	case <-n.done:
	}
}

// loadRoute resets the walk for the current booking and gate
func (n *Navigator) loadRoute() error {
	n.stopTicker()
	n.sim.Cancel()
	n.path = route.Path{}
	n.runID = ""

	var err error
	if n.booking != nil && n.gateID != "" {
		platformID := n.booking.DestinationPlatformID
		path, perr := n.paths.Get(n.gateID, platformID)
		if perr != nil {
			err = perr
			n.setMessage(&voice.NoPathFound)
			log.Printf("Navigator: no route %s", station.RouteKey(n.gateID, platformID))
		} else {
			n.path = path
			n.runID = uuid.New().String()
			n.setMessage(nil)
			log.Printf("Navigator: route %s selected (%d points, %.0f m)",
				station.RouteKey(n.gateID, platformID), len(path.Points), path.TotalLength())
		}
	}
	n.sim.Reset(n.path)
	n.adapter.SetRoute(n.path.LineString())

	for _, s := range n.sinks {
		if v, ok := s.(interface{ SetVehicleID(string) }); ok {
			v.SetVehicleID(n.runID)
		}
	}

	// a route change releases the live subscription; reacquire it if live is on
	if n.adapter.State().Enabled {
		n.adapter.Disable()
		if lerr := n.adapter.Enable(n.onFix, n.onLocationError); lerr != nil {
			log.Printf("Navigator: failed to resubscribe to location: %v", lerr)
		}
	}

	n.publish(EventRoute, n.routeKey())
	n.render()
	return err
}

func (n *Navigator) tick() {
	n.sim.Tick(n.period)
	if n.sim.State() != sim.Running {
		n.stopTicker()
	}
	n.render()
}

func (n *Navigator) applyFix(fix location.Fix) {
	if !n.adapter.State().Enabled {
		return
	}
	n.publish(EventLocation, n.adapter.Apply(fix))
	n.render()
}

func (n *Navigator) applyLocationError(err error) {
	if !n.adapter.State().Enabled {
		return
	}
	log.Printf("Navigator: location source error: %v", err)
	state := n.adapter.Fail(err)
	n.publish(EventLocation, state)
	n.publish(EventMessage, state.Message)
	n.render()
}

func (n *Navigator) startTicker() {
	if n.ticker != nil {
		return
	}
	n.ticker = time.NewTicker(n.period)
	n.tickC = n.ticker.C
}

func (n *Navigator) stopTicker() {
	if n.ticker == nil {
		return
	}
	n.ticker.Stop()
	n.ticker = nil
	n.tickC = nil
}

func (n *Navigator) shutdown() {
	n.stopTicker()
	n.sim.Cancel()
	n.adapter.Disable()
	n.hub.Close()
}

func (n *Navigator) setMessage(p *station.Phrase) {
	n.message = p
	if p != nil {
		n.publish(EventMessage, p.In(n.lang))
	}
}

func (n *Navigator) routeKey() string {
	if n.path.Empty() || n.booking == nil {
		return ""
	}
	return station.RouteKey(n.gateID, n.booking.DestinationPlatformID)
}

func (n *Navigator) publish(eventType string, data interface{}) {
	n.hub.Publish(Event{Type: eventType, RunID: n.runID, Data: data})
}

func (n *Navigator) onSimEvent(e sim.Event) {
	switch ev := e.(type) {
	case sim.StateChanged:
		n.publish(EventState, ev.To)
	case sim.InstructionChanged:
		payload := map[string]interface{}{"index": ev.Index}
		if ev.Instruction != nil {
			payload["id"] = ev.Instruction.ID
			payload["text"] = ev.Instruction.Text.In(n.lang)
		}
		n.publish(EventInstruction, payload)
	case sim.Moved:
		n.publish(EventPosition, ev)
	case sim.Arrived:
		log.Printf("Navigator: run %s arrived after %.1f m", n.runID, ev.Traveled)
		n.publish(EventArrived, ev)
	}
}

// render redraws the route and user layers on every sink
func (n *Navigator) render() {
	v := n.view()
	for _, s := range n.sinks {
		if err := s.RenderRoute(v); err != nil {
			log.Printf("Navigator: map sink %T failed to draw route: %v", s, err)
		}
		if err := s.RenderUser(v); err != nil {
			log.Printf("Navigator: map sink %T failed to draw user: %v", s, err)
		}
	}
}
