package navigator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/sim"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/internal/voice"
	"github.com/ksai0398/railway-navigation-app/repository"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
	langs []station.Lang
}

func (r *recorder) Announce(text string, lang station.Lang) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	r.langs = append(r.langs, lang)
}

func (r *recorder) Stop() {}

func (r *recorder) all() ([]string, []station.Lang) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...), append([]station.Lang(nil), r.langs...)
}

type fixture struct {
	nav   *Navigator
	src   *location.PushSource
	voice *recorder
	svg   *mapsink.SVG
	stop  func()
}

func newFixture(t *testing.T, speed float64, period time.Duration, bookings ...station.Booking) *fixture {
	t.Helper()
	topo, err := station.Default()
	if err != nil {
		t.Fatalf("station.Default() failed: %v", err)
	}
	if len(bookings) == 0 {
		bookings = topo.Bookings()
	}

	f := &fixture{
		src:   location.NewPushSource(time.Hour),
		voice: &recorder{},
		svg:   mapsink.NewSVG(),
	}
	f.nav = New(topo, repository.NewStaticBookingRepository(bookings), f.src, Options{
		Speed:      speed,
		TickPeriod: period,
		Voice:      f.voice,
		Sinks:      []mapsink.Sink{f.svg},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.nav.Run(ctx)
		close(done)
	}()
	f.stop = func() {
		cancel()
		<-done
	}
	t.Cleanup(f.stop)
	return f
}

func (f *fixture) waitFor(t *testing.T, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := f.nav.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Snapshot() failed: %v", err)
		}
		if cond(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
	return Snapshot{}
}

func selectRoute(t *testing.T, f *fixture, pnr, gate string) Snapshot {
	t.Helper()
	ctx := context.Background()
	if _, err := f.nav.SelectPNR(ctx, pnr); err != nil {
		t.Fatalf("SelectPNR(%s) failed: %v", pnr, err)
	}
	snap, err := f.nav.SelectGate(ctx, gate)
	if err != nil {
		t.Fatalf("SelectGate(%s) failed: %v", gate, err)
	}
	return snap
}

func TestSelectPNRMiss(t *testing.T) {
	f := newFixture(t, 2, time.Hour)

	snap, err := f.nav.SelectPNR(context.Background(), "0000000000")
	if !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("SelectPNR() = %v, expected ErrBookingNotFound", err)
	}
	if snap.Booking != nil || snap.Message != voice.BookingNotFound.En {
		t.Errorf("booking %v message %q", snap.Booking, snap.Message)
	}
}

func TestSelectRoute(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	snap := selectRoute(t, f, "1234567890", "gate-a")

	if snap.RouteKey != "gate-a-platform-1" {
		t.Errorf("route key = %q", snap.RouteKey)
	}
	if len(snap.Path.Points) != 10 {
		t.Errorf("path has %d points, expected 10", len(snap.Path.Points))
	}
	if snap.Simulation.State != sim.Idle {
		t.Errorf("state = %s", snap.Simulation.State)
	}
	if snap.UserPosition == nil || *snap.UserPosition != snap.Path.Points[0].Coord {
		t.Error("user should stand on the gate before the walk starts")
	}
	if snap.RunID == "" {
		t.Error("a route should get a run id")
	}
	if snap.Message != "" {
		t.Errorf("unexpected message %q", snap.Message)
	}
}

func TestSelectGateErrors(t *testing.T) {
	ctx := context.Background()
	lost := station.Booking{
		PNR: "9999999999", TrainNumber: "1", PlatformNumber: "9", DestinationPlatformID: "platform-9",
	}
	f := newFixture(t, 2, time.Hour, lost)

	if _, err := f.nav.SelectGate(ctx, "gate-z"); !errors.Is(err, station.ErrUnknownGate) {
		t.Errorf("SelectGate(gate-z) = %v, expected ErrUnknownGate", err)
	}
	if _, err := f.nav.Start(ctx); !errors.Is(err, ErrNoRouteSelected) {
		t.Errorf("Start() without a route = %v, expected ErrNoRouteSelected", err)
	}

	if _, err := f.nav.SelectPNR(ctx, "9999999999"); err != nil {
		t.Fatal(err)
	}
	snap, err := f.nav.SelectGate(ctx, "gate-a")
	if !errors.Is(err, station.ErrNoRoute) {
		t.Fatalf("SelectGate() = %v, expected ErrNoRoute", err)
	}
	if !snap.Path.Empty() || snap.Message != voice.NoPathFound.En {
		t.Errorf("no-route snapshot: %d points, message %q", len(snap.Path.Points), snap.Message)
	}
}

func TestWalkToCompletion(t *testing.T) {
	f := newFixture(t, 1000, 5*time.Millisecond)
	selectRoute(t, f, "1234567890", "gate-a")

	_, events, cancel := f.nav.Hub().Subscribe()
	defer cancel()

	snap, err := f.nav.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if snap.Simulation.State != sim.Running || snap.Simulation.InstructionIndex != 0 {
		t.Errorf("after start: %s at index %d", snap.Simulation.State, snap.Simulation.InstructionIndex)
	}

	timeout := time.After(5 * time.Second)
	for arrived := false; !arrived; {
		select {
		case e := <-events:
			arrived = e.Type == EventArrived
		case <-timeout:
			t.Fatal("walk never arrived")
		}
	}

	snap = f.waitFor(t, "completion", func(s Snapshot) bool { return s.Simulation.State == sim.Completed })
	if snap.Simulation.Traveled != 140 {
		t.Errorf("traveled = %v, expected 140", snap.Simulation.Traveled)
	}
	if *snap.UserPosition != snap.Path.Points[len(snap.Path.Points)-1].Coord {
		t.Error("walker should stop on the platform")
	}

	texts, _ := f.voice.all()
	if len(texts) == 0 || texts[len(texts)-1] != voice.DestinationReached.En {
		t.Errorf("announcements = %v", texts)
	}
	if _, err := f.nav.Start(context.Background()); !errors.Is(err, sim.ErrCompleted) {
		t.Errorf("Start() after arrival = %v", err)
	}
}

func TestPauseAndResume(t *testing.T) {
	f := newFixture(t, 20, 5*time.Millisecond)
	selectRoute(t, f, "1234567890", "gate-a")
	ctx := context.Background()

	if _, err := f.nav.Start(ctx); err != nil {
		t.Fatal(err)
	}
	f.waitFor(t, "movement", func(s Snapshot) bool { return s.Simulation.Traveled > 0 })

	snap, err := f.nav.Pause(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Simulation.State != sim.Cancelled || snap.Simulation.Bearing != nil {
		t.Errorf("paused: %s bearing %v", snap.Simulation.State, snap.Simulation.Bearing)
	}
	traveled := snap.Simulation.Traveled

	time.Sleep(30 * time.Millisecond)
	snap, _ = f.nav.Snapshot(ctx)
	if snap.Simulation.Traveled != traveled {
		t.Error("paused walk kept moving")
	}

	if _, err := f.nav.Start(ctx); err != nil {
		t.Fatal(err)
	}
	f.waitFor(t, "resumed movement", func(s Snapshot) bool { return s.Simulation.Traveled > traveled })
}

func TestLiveLocationTakesOver(t *testing.T) {
	f := newFixture(t, 10, 5*time.Millisecond)
	selectRoute(t, f, "1234567890", "gate-a")
	ctx := context.Background()

	if _, err := f.nav.Start(ctx); err != nil {
		t.Fatal(err)
	}
	f.waitFor(t, "movement", func(s Snapshot) bool { return s.Simulation.Traveled > 0 })

	snap, err := f.nav.SetLive(ctx, true)
	if err != nil {
		t.Fatalf("SetLive(true) failed: %v", err)
	}
	if snap.Simulation.State != sim.Cancelled {
		t.Errorf("simulator state = %s, expected cancelled", snap.Simulation.State)
	}
	traveled := snap.Simulation.Traveled
	if traveled == 0 {
		t.Error("enabling live location must not reset the distance walked")
	}
	if snap.UserPosition != nil {
		t.Error("no live fix yet, user position should be unknown")
	}
	if _, err := f.nav.Start(ctx); !errors.Is(err, ErrLiveActive) {
		t.Errorf("Start() while live = %v, expected ErrLiveActive", err)
	}

	first := orb.Point{77.2194, 28.6430}
	f.src.Push(location.Fix{Position: first})
	snap = f.waitFor(t, "first fix", func(s Snapshot) bool { return s.UserPosition != nil })
	if *snap.UserPosition != first || snap.UserBearing != nil {
		t.Errorf("after first fix: %v bearing %v", *snap.UserPosition, snap.UserBearing)
	}

	second := orb.Point{77.2194, 28.6440}
	f.src.Push(location.Fix{Position: second})
	snap = f.waitFor(t, "second fix", func(s Snapshot) bool { return s.UserBearing != nil })
	if *snap.UserPosition != second {
		t.Errorf("user position = %v", *snap.UserPosition)
	}
	if snap.Simulation.Traveled != traveled {
		t.Error("simulator moved while live location was on")
	}

	snap, err = f.nav.SetLive(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Live.Enabled || snap.Live.Position != nil {
		t.Errorf("live state after disable: %+v", snap.Live)
	}
	if f.src.Subscribers() != 0 {
		t.Error("location subscription leaked")
	}
	if _, err := f.nav.Start(ctx); err != nil {
		t.Errorf("Start() after live off = %v", err)
	}
}

func TestLiveFixMeasuredAgainstRoute(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	snap := selectRoute(t, f, "1234567890", "gate-a")
	ctx := context.Background()

	if _, err := f.nav.SetLive(ctx, true); err != nil {
		t.Fatal(err)
	}
	onRoute := snap.Path.Points[3].Coord
	f.src.Push(location.Fix{Position: onRoute})
	snap = f.waitFor(t, "fix on the route", func(s Snapshot) bool { return s.Live.DistanceToRoute != nil })
	if d := *snap.Live.DistanceToRoute; d > 0.5 {
		t.Errorf("fix on a route point is %.2f m away", d)
	}

	// another gate's route no longer passes through that point
	snap, err := f.nav.SelectGate(ctx, "gate-b")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Live.DistanceToRoute == nil {
		t.Fatal("distance should be remeasured against the new route")
	}
	if snap.RouteKey != "gate-b-platform-1" || *snap.Live.DistanceToRoute < 10 {
		t.Errorf("route %s distance %.2f", snap.RouteKey, *snap.Live.DistanceToRoute)
	}
}

func TestLocationErrorClearsPosition(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	ctx := context.Background()

	if _, err := f.nav.SetLive(ctx, true); err != nil {
		t.Fatal(err)
	}
	f.src.Push(location.Fix{Position: orb.Point{77.2194, 28.6430}})
	f.waitFor(t, "fix", func(s Snapshot) bool { return s.UserPosition != nil })

	f.src.Fail(&location.Error{Code: location.PermissionDenied})
	snap := f.waitFor(t, "error", func(s Snapshot) bool { return s.Live.Code != "" })
	if snap.UserPosition != nil {
		t.Error("error should clear the user position")
	}
	if snap.Live.Message != location.PermissionDenied.Message().En {
		t.Errorf("message = %q", snap.Live.Message)
	}
}

func TestLanguageSwitch(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	ctx := context.Background()
	selectRoute(t, f, "1234567890", "gate-a")

	snap, err := f.nav.SetLanguage(ctx, station.LangHindi)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Lang != station.LangHindi {
		t.Errorf("lang = %s", snap.Lang)
	}

	if _, err := f.nav.Start(ctx); err != nil {
		t.Fatal(err)
	}
	texts, langs := f.voice.all()
	if len(texts) != 1 || texts[0] != snap.Path.Instructions[0].Text.Hi || langs[0] != station.LangHindi {
		t.Errorf("announced %v in %v", texts, langs)
	}
}

func TestGateClickOnMap(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	if _, err := f.nav.SelectPNR(context.Background(), "2345678901"); err != nil {
		t.Fatal(err)
	}

	f.svg.SelectGate("gate-b")
	snap := f.waitFor(t, "gate selection", func(s Snapshot) bool { return s.GateID == "gate-b" })
	if snap.RouteKey != "gate-b-platform-2" {
		t.Errorf("route key = %q", snap.RouteKey)
	}
}

func TestNewRouteResetsWalk(t *testing.T) {
	f := newFixture(t, 20, 5*time.Millisecond)
	selectRoute(t, f, "1234567890", "gate-a")
	ctx := context.Background()

	if _, err := f.nav.Start(ctx); err != nil {
		t.Fatal(err)
	}
	f.waitFor(t, "movement", func(s Snapshot) bool { return s.Simulation.Traveled > 0 })

	snap, err := f.nav.SelectGate(ctx, "gate-b")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Simulation.State != sim.Idle || snap.Simulation.Traveled != 0 || snap.Simulation.InstructionIndex != 0 {
		t.Errorf("new gate should reset the walk: %+v", snap.Simulation)
	}
	if snap.RouteKey != "gate-b-platform-1" {
		t.Errorf("route key = %q", snap.RouteKey)
	}
}

func TestStopReleasesResources(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	ctx := context.Background()

	if _, err := f.nav.SetLive(ctx, true); err != nil {
		t.Fatal(err)
	}
	_, events, _ := f.nav.Hub().Subscribe()

	f.stop()

	if f.src.Subscribers() != 0 {
		t.Error("location subscription leaked after stop")
	}
	if _, err := f.nav.Snapshot(ctx); !errors.Is(err, ErrStopped) {
		t.Errorf("Snapshot() after stop = %v, expected ErrStopped", err)
	}
	for range events {
	}
}
