package models

import (
	"github.com/paulmach/orb"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

// StationResponse is the JSON response structure for GET /api/station
type StationResponse struct {
	Name      string                 `json:"name"`
	Origin    orb.Point              `json:"origin"`
	Points    []station.StationPoint `json:"points"`
	Gates     []string               `json:"gates"`
	RouteKeys []string               `json:"routeKeys"`
	Languages []station.Lang         `json:"languages"`
}

// NewStationResponse describes topo for map front-ends
func NewStationResponse(topo *station.Topology) StationResponse {
	resp := StationResponse{
		Name:      topo.Name(),
		Origin:    topo.Origin(),
		Points:    topo.Points(),
		RouteKeys: topo.RouteKeys(),
		Languages: station.SupportedLangs(),
	}
	for _, g := range topo.PointsOfKind(station.KindGate) {
		resp.Gates = append(resp.Gates, g.ID)
	}
	return resp
}
