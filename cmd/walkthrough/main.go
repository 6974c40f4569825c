// Command walkthrough plays one simulated walk from a gate to the platform
// of a booking and prints every navigation event and announcement.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ksai0398/railway-navigation-app/internal/location"
	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/navigator"
	"github.com/ksai0398/railway-navigation-app/internal/station"
	"github.com/ksai0398/railway-navigation-app/internal/voice"
	"github.com/ksai0398/railway-navigation-app/repository"
)

func main() {
	pnr := flag.String("pnr", "1234567890", "PNR of the booking to navigate to")
	gate := flag.String("gate", "gate-a", "Starting gate")
	langTag := flag.String("lang", string(station.LangEnglish), "Announcement language (en-IN or hi-IN)")
	speed := flag.Float64("speed", 20, "Walking speed in meters per second")
	tick := flag.Duration("tick", 20*time.Millisecond, "Simulator step")
	stationFile := flag.String("station", "", "Station YAML file (default: built-in station)")
	timeout := flag.Duration("timeout", time.Minute, "Give up after this long")
	feed := flag.Bool("feed", false, "Print the GTFS-Realtime position reported on arrival")
	flag.Parse()

	lang, ok := station.ParseLang(*langTag)
	if !ok {
		log.Fatalf("Unsupported language %q", *langTag)
	}

	topo, err := station.Default()
	if *stationFile != "" {
		topo, err = station.LoadFile(*stationFile)
	}
	if err != nil {
		log.Fatalf("Failed to load station: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := walkOptions{lang: lang, speed: *speed, tick: *tick, feed: *feed}
	if err := walk(ctx, os.Stdout, topo, *pnr, *gate, opts); err != nil {
		log.Printf("Walkthrough failed: %v", err)
		os.Exit(1)
	}
}

type walkOptions struct {
	lang  station.Lang
	speed float64
	tick  time.Duration
	feed  bool
}

func walk(ctx context.Context, out io.Writer, topo *station.Topology, pnr, gate string, opts walkOptions) error {
	var sinks []mapsink.Sink
	var feed *mapsink.GTFSRealtime
	if opts.feed {
		feed = mapsink.NewGTFSRealtime("walkthrough")
		sinks = append(sinks, feed)
	}

	nav := navigator.New(topo, repository.NewStaticBookingRepository(topo.Bookings()), location.NewPushSource(location.DefaultMaxWait), navigator.Options{
		Speed:      opts.speed,
		TickPeriod: opts.tick,
		Lang:       opts.lang,
		Voice:      voice.Nop{},
		Sinks:      sinks,
	})

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go nav.Run(runCtx)

	_, events, cancel := nav.Hub().Subscribe()
	defer cancel()

	if _, err := nav.SelectPNR(ctx, pnr); err != nil {
		return err
	}
	snap, err := nav.SelectGate(ctx, gate)
	if err != nil {
		return err
	}
	b := snap.Booking
	fmt.Fprintf(out, "%s %s, platform %s, coach %s\n", b.TrainNumber, b.TrainName, b.PlatformNumber, b.CoachDetails)
	fmt.Fprintf(out, "Route %s: %d points, %.0f m\n", snap.RouteKey, len(snap.Path.Points), snap.Path.TotalLength())

	if _, err := nav.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("walk did not finish: %w", ctx.Err())
		case e, ok := <-events:
			if !ok {
				return fmt.Errorf("navigator stopped")
			}
			switch e.Type {
			case navigator.EventSpeak, navigator.EventInstruction, navigator.EventState, navigator.EventMessage:
				fmt.Fprintf(out, "[%s] %s %+v\n", e.At.Format("15:04:05.000"), e.Type, e.Data)
			case navigator.EventArrived:
				fmt.Fprintf(out, "[%s] arrived\n", e.At.Format("15:04:05.000"))
				if feed == nil {
					return nil
				}
				// commands run in order, so the arrival has been drawn once this returns
				if _, err := nav.Snapshot(ctx); err != nil {
					return err
				}
				return printFeed(out, feed)
			}
		}
	}
}

// printFeed encodes the walker feed and reads it back the way a GTFS-RT
// consumer would.
func printFeed(out io.Writer, feed *mapsink.GTFSRealtime) error {
	var buf bytes.Buffer
	if _, err := feed.WriteTo(&buf); err != nil {
		return err
	}
	positions, err := mapsink.DecodePositions(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to read back feed: %w", err)
	}
	if len(positions) == 0 {
		return fmt.Errorf("feed has no walker position")
	}
	for _, p := range positions {
		stop := ""
		if p.StopID != nil {
			stop = *p.StopID
		}
		var lat, lng float64
		if p.Latitude != nil && p.Longitude != nil {
			lat, lng = *p.Latitude, *p.Longitude
		}
		fmt.Fprintf(out, "Feed %s: %s %s at %.6f,%.6f (%d bytes)\n", p.EntityID, p.Status, stop, lat, lng, buf.Len())
	}
	return nil
}
