package location

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/geo"
	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// State is what the adapter currently knows about the user
type State struct {
	Enabled  bool       `json:"enabled"`
	Position *orb.Point `json:"position,omitempty"`
	Bearing  *float64   `json:"bearing,omitempty"`
	Message  string     `json:"message,omitempty"`
	Code     Code       `json:"code,omitempty"`

	// DistanceToRoute is how far the fix lies from the selected route, in
	// meters. nil without a fix or without a route.
	DistanceToRoute *float64 `json:"distanceToRoute,omitempty"`
}

// Adapter turns raw fixes into position and heading. It is not safe for
// concurrent use; one owner forwards the subscription callbacks into
// Apply and Fail.
type Adapter struct {
	src   Source
	sub   Subscription
	lang  station.Lang
	route orb.LineString

	state State
}

// NewAdapter wraps src
func NewAdapter(src Source) *Adapter {
	return &Adapter{src: src, lang: station.LangEnglish}
}

// SetLanguage selects the language of user messages
func (a *Adapter) SetLanguage(lang station.Lang) {
	a.lang = lang
}

// SetRoute sets the line fixes are measured against; an empty line clears it
func (a *Adapter) SetRoute(line orb.LineString) {
	a.route = append(orb.LineString(nil), line...)
	if a.state.Position != nil {
		a.state.DistanceToRoute = a.distanceToRoute(*a.state.Position)
	}
}

// Enable subscribes to the source. Calling it while enabled is a no-op.
func (a *Adapter) Enable(onUpdate func(Fix), onError func(error)) error {
	if a.state.Enabled {
		return nil
	}
	sub, err := a.src.Subscribe(onUpdate, onError)
	if err != nil {
		a.Fail(err)
		return fmt.Errorf("failed to subscribe to location source: %w", err)
	}
	a.sub = sub
	a.state = State{Enabled: true}
	return nil
}

// Disable releases the subscription and forgets position and bearing
func (a *Adapter) Disable() {
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
	a.state = State{}
}

// Apply records a fix. Bearing is taken from the previous position; the
// first fix after enabling has none. Fixes arriving while disabled are
// dropped.
func (a *Adapter) Apply(fix Fix) State {
	if !a.state.Enabled {
		return a.State()
	}

	var bearing *float64
	if prev := a.state.Position; prev != nil {
		b := geo.BearingBetween(*prev, fix.Position)
		bearing = &b
	}
	pos := fix.Position
	a.state.Position = &pos
	a.state.Bearing = bearing
	a.state.DistanceToRoute = a.distanceToRoute(pos)
	a.state.Message = ""
	a.state.Code = ""
	return a.State()
}

// Fail records a source error: the position is cleared and a message set.
// The subscription stays open so a later fix can recover.
func (a *Adapter) Fail(err error) State {
	code := Unknown
	var lerr *Error
	if errors.As(err, &lerr) {
		code = lerr.Code
	}
	a.state.Position = nil
	a.state.Bearing = nil
	a.state.DistanceToRoute = nil
	a.state.Code = code
	a.state.Message = code.Message().In(a.lang)
	return a.State()
}

// State returns a copy of the adapter state
func (a *Adapter) State() State {
	s := a.state
	if s.Position != nil {
		p := *s.Position
		s.Position = &p
	}
	if s.Bearing != nil {
		b := *s.Bearing
		s.Bearing = &b
	}
	if s.DistanceToRoute != nil {
		d := *s.DistanceToRoute
		s.DistanceToRoute = &d
	}
	return s
}

func (a *Adapter) distanceToRoute(p orb.Point) *float64 {
	d, ok := geo.DistanceToLine(p, a.route)
	if !ok {
		return nil
	}
	return &d
}
