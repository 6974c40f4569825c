// Command export-map writes the station map with one route drawn on it,
// as SVG, GeoJSON or a GTFS-Realtime feed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ksai0398/railway-navigation-app/internal/mapsink"
	"github.com/ksai0398/railway-navigation-app/internal/route"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

func main() {
	gate := flag.String("gate", "gate-a", "Starting gate")
	platform := flag.String("platform", "platform-1", "Destination platform")
	format := flag.String("format", "svg", "Output format: svg, geojson or gtfs-rt")
	langTag := flag.String("lang", string(station.LangEnglish), "Label language (en-IN or hi-IN)")
	stationFile := flag.String("station", "", "Station YAML file (default: built-in station)")
	output := flag.String("output", "", "Output file (default: stdout)")
	flag.Parse()

	topo, err := station.Default()
	if *stationFile != "" {
		topo, err = station.LoadFile(*stationFile)
	}
	if err != nil {
		log.Fatalf("Failed to load station: %v", err)
	}
	lang, ok := station.ParseLang(*langTag)
	if !ok {
		log.Fatalf("Unsupported language %q", *langTag)
	}

	enc, err := newEncoder(*format)
	if err != nil {
		log.Fatal(err)
	}

	v, err := routeView(topo, *gate, *platform, lang)
	if err != nil {
		log.Fatalf("Failed to build route: %v", err)
	}
	if err := mapsink.Draw(enc, v); err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	n, err := enc.WriteTo(out)
	if err != nil {
		log.Fatalf("Failed to write map: %v", err)
	}
	if *output != "" {
		log.Printf("Wrote %d bytes of %s to %s", n, enc.ContentType(), *output)
	}
}

func newEncoder(format string) (mapsink.Encoder, error) {
	switch format {
	case "svg":
		return mapsink.NewSVG(), nil
	case "geojson":
		return mapsink.NewGeoJSON(), nil
	case "gtfs-rt":
		return mapsink.NewGTFSRealtime("export"), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// routeView places the walker at the gate of the materialized route
func routeView(topo *station.Topology, gateID, platformID string, lang station.Lang) (mapsink.View, error) {
	r, err := topo.Route(gateID, platformID)
	if err != nil {
		return mapsink.View{}, err
	}
	path := route.Materialize(topo, r.Instructions, gateID)
	if path.Empty() {
		return mapsink.View{}, fmt.Errorf("route %s has no points", station.RouteKey(gateID, platformID))
	}

	start := path.Points[0].Coord
	return mapsink.View{
		Topology:              topo,
		SelectedGateID:        gateID,
		DestinationPlatformID: platformID,
		RoutePoints:           path.Points,
		UserPosition:          &start,
		Instructions:          path.Instructions,
		Lang:                  lang,
	}, nil
}
