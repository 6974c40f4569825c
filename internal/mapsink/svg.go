package mapsink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

const (
	svgPadding = 12.0 // meters around the outermost point
	svgScale   = 5.0  // pixels per meter
)

var kindColors = map[station.Kind]string{
	station.KindGate:     "#2563eb",
	station.KindPlatform: "#16a34a",
	station.KindPOI:      "#f59e0b",
}

// SVG draws a schematic floor plan in planar meters. Gates carry a
// data-gate attribute so a page can post clicks back through SelectGate.
type SVG struct {
	gateEvents

	mu       sync.Mutex
	topo     *station.Topology
	minX     float64
	maxY     float64
	width    float64
	height   float64
	base     string
	routeSVG string
	userSVG  string
}

// NewSVG creates an empty SVG sink
func NewSVG() *SVG {
	return &SVG{}
}

func (s *SVG) ContentType() string { return "image/svg+xml" }

func (s *SVG) RenderTopology(topo *station.Topology) error {
	if topo == nil {
		return fmt.Errorf("nil topology")
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range topo.Points() {
		minX = math.Min(minX, p.Offset.X)
		minY = math.Min(minY, p.Offset.Y)
		maxX = math.Max(maxX, p.Offset.X)
		maxY = math.Max(maxY, p.Offset.Y)
	}
	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.topo = topo
	s.minX = minX - svgPadding
	s.maxY = maxY + svgPadding
	s.width = (maxX - minX + 2*svgPadding) * svgScale
	s.height = (maxY - minY + 2*svgPadding) * svgScale

	var b strings.Builder
	fmt.Fprintf(&b, `<g id="topology"><title>%s</title>`, esc(topo.Name()))
	for _, p := range topo.Points() {
		color, ok := kindColors[p.Kind]
		if !ok {
			continue // path nodes only shape lines
		}
		x, y := s.px(p.Offset)
		switch p.Kind {
		case station.KindGate:
			fmt.Fprintf(&b, `<g class="gate" data-gate="%s"><rect x="%.1f" y="%.1f" width="24" height="24" fill="%s"/>`,
				esc(p.ID), x-12, y-12, color)
		case station.KindPlatform:
			fmt.Fprintf(&b, `<g class="platform" data-platform="%s"><rect x="%.1f" y="%.1f" width="60" height="16" fill="%s"/>`,
				esc(p.ID), x-30, y-8, color)
		default:
			fmt.Fprintf(&b, `<g class="poi %s"><circle cx="%.1f" cy="%.1f" r="8" fill="%s"/>`,
				esc(p.Category), x, y, color)
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="middle">%s</text></g>`,
			x, y-16, esc(p.Name))
	}
	b.WriteString(`</g>`)
	s.base = b.String()
	return nil
}

func (s *SVG) RenderRoute(v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(v.RoutePoints) == 0 {
		s.routeSVG = ""
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<g id="route" data-route="%s"><polyline fill="none" stroke="#dc2626" stroke-width="4" stroke-linejoin="round" points="`,
		esc(v.RouteKey()))
	for i, p := range v.RoutePoints {
		if i > 0 {
			b.WriteByte(' ')
		}
		x, y := s.px(p.Offset)
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	b.WriteString(`"/>`)

	// ring around the target of the current leg
	if v.InstructionIndex >= 0 && v.InstructionIndex < len(v.Instructions) && v.Topology != nil {
		if target, ok := v.Topology.Point(v.Instructions[v.InstructionIndex].To); ok {
			x, y := s.px(target.Offset)
			fmt.Fprintf(&b, `<circle class="next-target" cx="%.1f" cy="%.1f" r="14" fill="none" stroke="#dc2626" stroke-dasharray="4 3"/>`, x, y)
		}
	}
	b.WriteString(`</g>`)
	s.routeSVG = b.String()
	return nil
}

func (s *SVG) RenderUser(v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.UserPosition == nil || s.topo == nil {
		s.userSVG = ""
		return nil
	}

	x, y := s.px(geo.Unproject(s.topo.Origin(), *v.UserPosition))
	var b strings.Builder
	fmt.Fprintf(&b, `<g id="user" transform="translate(%.1f %.1f)">`, x, y)
	b.WriteString(`<circle r="9" fill="#7c3aed" stroke="#fff" stroke-width="2"/>`)
	if v.UserBearing != nil {
		// screen y points down, so a clockwise rotation matches compass bearing
		fmt.Fprintf(&b, `<path d="M0,-18 L6,-8 L-6,-8 Z" fill="#7c3aed" transform="rotate(%.1f)"/>`, *v.UserBearing)
	}
	b.WriteString(`</g>`)
	s.userSVG = b.String()
	return nil
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	s.mu.Lock()
	doc := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">%s%s%s</svg>`,
		s.width, s.height, s.width, s.height, s.base, s.routeSVG, s.userSVG)
	s.mu.Unlock()

	n, err := io.WriteString(w, doc)
	return int64(n), err
}

// px maps a planar offset to SVG pixels; SVG y grows downwards
func (s *SVG) px(off geo.Offset) (float64, float64) {
	return (off.X - s.minX) * svgScale, (s.maxY - off.Y) * svgScale
}

func esc(text string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(text))
	return buf.String()
}
