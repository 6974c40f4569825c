package station

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func loadDefault(t *testing.T) *Topology {
	t.Helper()
	topo, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	return topo
}

func TestDefaultStationValidates(t *testing.T) {
	topo := loadDefault(t)
	if err := topo.Validate(); err != nil {
		t.Fatalf("authored station has broken references:\n%v", err)
	}
}

func TestDefaultStationRouteKeys(t *testing.T) {
	topo := loadDefault(t)

	var want []string
	for _, g := range topo.PointsOfKind(KindGate) {
		for _, p := range topo.PointsOfKind(KindPlatform) {
			want = append(want, RouteKey(g.ID, p.ID))
		}
	}
	got := topo.RouteKeys()
	sort.Strings(want)
	sort.Strings(got)

	if len(got) != 8 {
		t.Fatalf("expected 8 authored routes, got %d: %v", len(got), got)
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("route keys = %v, expected every gate/platform pair %v", got, want)
	}
}

func TestRouteLookup(t *testing.T) {
	topo := loadDefault(t)

	r, err := topo.Route("gate-a", "platform-1")
	if err != nil {
		t.Fatalf("Route(gate-a, platform-1) failed: %v", err)
	}
	if r.Key != "gate-a-platform-1" {
		t.Errorf("Key = %q", r.Key)
	}
	if len(r.Instructions) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(r.Instructions))
	}
	if r.Instructions[0].From != "gate-a" {
		t.Errorf("first leg starts at %q, expected gate-a", r.Instructions[0].From)
	}

	_, err = topo.Route("gate-z", "platform-9")
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute for unauthored pair, got %v", err)
	}
}

func TestRouteReturnsCopy(t *testing.T) {
	topo := loadDefault(t)

	r, _ := topo.Route("gate-a", "platform-1")
	d := 99.0
	r.Instructions[0].CumulativeDistanceToTarget = &d
	r.Instructions[0].To = "mutated"

	again, _ := topo.Route("gate-a", "platform-1")
	if again.Instructions[0].CumulativeDistanceToTarget != nil {
		t.Error("annotation leaked into the shared table")
	}
	if again.Instructions[0].To != "node-ga-2" {
		t.Errorf("shared table mutated: To = %q", again.Instructions[0].To)
	}
}

func TestPointsProjected(t *testing.T) {
	topo := loadDefault(t)

	gate, ok := topo.Point("gate-a")
	if !ok {
		t.Fatal("gate-a missing")
	}
	if gate.Coord != topo.Origin() {
		t.Errorf("gate-a sits on the origin but projected to %v", gate.Coord)
	}

	p1, _ := topo.Point("platform-1")
	if p1.Coord.Lat() <= gate.Coord.Lat() {
		t.Errorf("platform-1 is north of gate-a but lat %v <= %v", p1.Coord.Lat(), gate.Coord.Lat())
	}
	if p1.Coord.Lon() >= gate.Coord.Lon() {
		t.Errorf("platform-1 is west of gate-a but lng %v >= %v", p1.Coord.Lon(), gate.Coord.Lon())
	}

	if !topo.IsGate("gate-b") || topo.IsGate("platform-1") || topo.IsGate("nope") {
		t.Error("IsGate misclassified points")
	}
}

func TestValidateCatchesBrokenRoutes(t *testing.T) {
	data := []byte(`
name: Test
origin: {lat: 10, lng: 10}
points:
  - {id: g, name: G, kind: gate, x: 0, y: 0}
  - {id: p, name: P, kind: platform, x: 0, y: 10}
  - {id: n, name: n, kind: path-node, x: 0, y: 5}
routes:
  g-p:
    - {id: l1, text: {en: a, hi: b}, from: g, to: n, distance: 5}
    - {id: l2, text: {en: a, hi: b}, from: x, to: p, via: [ghost], distance: 5}
bookings:
  - {pnr: "1111111111", train_number: "1", platform_number: "1", destination_platform_id: q}
`)
	topo, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	err = topo.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken route")
	}
	for _, want := range []string{"starts at x", "unknown point ghost", "unknown platform q"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate error missing %q:\n%v", want, err)
		}
	}
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "points: [[["},
		{"missing name", "origin: {lat: 1, lng: 1}\npoints: [{id: a, name: A, kind: gate}]\nroutes: {a-b: [{id: x, text: {en: a, hi: b}, from: a, to: b}]}"},
		{"bad kind", "name: S\norigin: {lat: 1, lng: 1}\npoints: [{id: a, name: A, kind: tunnel}]\nroutes: {a-b: [{id: x, text: {en: a, hi: b}, from: a, to: b}]}"},
		{"missing hindi", "name: S\norigin: {lat: 1, lng: 1}\npoints: [{id: a, name: A, kind: gate}]\nroutes: {a-b: [{id: x, text: {en: a}, from: a, to: b}]}"},
		{"empty route", "name: S\norigin: {lat: 1, lng: 1}\npoints: [{id: a, name: A, kind: gate}]\nroutes: {a-b: []}"},
		{"duplicate point", "name: S\norigin: {lat: 1, lng: 1}\npoints: [{id: a, name: A, kind: gate}, {id: a, name: B, kind: gate}]\nroutes: {a-b: [{id: x, text: {en: a, hi: b}, from: a, to: b}]}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.data)); err == nil {
				t.Errorf("Parse accepted %s", tc.name)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "station.yaml")
	if err := os.WriteFile(path, defaultStationYAML, 0644); err != nil {
		t.Fatal(err)
	}
	topo, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if topo.Name() != "New Delhi Junction" {
		t.Errorf("Name = %q", topo.Name())
	}
}

func TestParseLangAndPhrase(t *testing.T) {
	if l, ok := ParseLang("hi"); !ok || l != LangHindi {
		t.Errorf("ParseLang(hi) = %v, %v", l, ok)
	}
	if _, ok := ParseLang("fr-FR"); ok {
		t.Error("ParseLang accepted an unsupported language")
	}

	p := Phrase{En: "Turn left", Hi: "बाएँ मुड़ें"}
	if p.In(LangHindi) != "बाएँ मुड़ें" || p.In(LangEnglish) != "Turn left" {
		t.Error("Phrase.In picked the wrong language")
	}
	if (Phrase{En: "only english"}).In(LangHindi) != "only english" {
		t.Error("Phrase.In should fall back to English")
	}
}
