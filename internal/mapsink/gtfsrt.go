package mapsink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

const gtfsRealtimeVersion = "2.0"

// StatusMap maps GTFS-RT VehicleStopStatus enum to string
var StatusMap = map[int32]string{
	0: "INCOMING_AT",
	1: "STOPPED_AT",
	2: "IN_TRANSIT_TO",
}

// GTFSRealtime publishes the walker as a single GTFS-Realtime
// VehiclePosition so transit tooling can follow it. The route key is the
// trip id and the target of the current leg is the stop id.
type GTFSRealtime struct {
	gateEvents

	vehicleID string
	now       func() time.Time

	mu      sync.Mutex
	station string
	view    View
	hasUser bool
}

// NewGTFSRealtime creates a sink that reports the walker as vehicleID
func NewGTFSRealtime(vehicleID string) *GTFSRealtime {
	return &GTFSRealtime{vehicleID: vehicleID, now: time.Now}
}

// SetVehicleID changes the id reported for the walker, e.g. per run
func (g *GTFSRealtime) SetVehicleID(id string) {
	g.mu.Lock()
	g.vehicleID = id
	g.mu.Unlock()
}

func (g *GTFSRealtime) ContentType() string { return "application/x-protobuf" }

func (g *GTFSRealtime) RenderTopology(topo *station.Topology) error {
	if topo == nil {
		return fmt.Errorf("nil topology")
	}
	g.mu.Lock()
	g.station = topo.Name()
	g.mu.Unlock()
	return nil
}

func (g *GTFSRealtime) RenderRoute(v View) error {
	g.mu.Lock()
	g.view.SelectedGateID = v.SelectedGateID
	g.view.DestinationPlatformID = v.DestinationPlatformID
	g.view.Instructions = v.Instructions
	g.view.RoutePoints = v.RoutePoints
	g.mu.Unlock()
	return nil
}

func (g *GTFSRealtime) RenderUser(v View) error {
	g.mu.Lock()
	g.view.UserPosition = v.UserPosition
	g.view.UserBearing = v.UserBearing
	g.view.InstructionIndex = v.InstructionIndex
	g.view.Arrived = v.Arrived
	g.hasUser = v.UserPosition != nil
	g.mu.Unlock()
	return nil
}

// Feed builds the current FeedMessage. It has no entities until a user
// position has been rendered.
func (g *GTFSRealtime) Feed() *gtfs.FeedMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := uint64(g.now().Unix())
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}
	if !g.hasUser {
		return feed
	}

	v := g.view
	vehicle := &gtfs.VehiclePosition{
		Vehicle: &gtfs.VehicleDescriptor{
			Id:    proto.String(g.vehicleID),
			Label: proto.String(g.station),
		},
		Position: &gtfs.Position{
			Latitude:  proto.Float32(float32(v.UserPosition.Lat())),
			Longitude: proto.Float32(float32(v.UserPosition.Lon())),
		},
		Timestamp: proto.Uint64(ts),
	}
	if v.UserBearing != nil {
		vehicle.Position.Bearing = proto.Float32(float32(*v.UserBearing))
	}
	if key := v.RouteKey(); key != "" {
		vehicle.Trip = &gtfs.TripDescriptor{
			TripId:  proto.String(key),
			RouteId: proto.String(v.DestinationPlatformID),
		}
	}

	switch {
	case v.Arrived:
		vehicle.StopId = proto.String(v.DestinationPlatformID)
		vehicle.CurrentStatus = gtfs.VehiclePosition_STOPPED_AT.Enum()
	case v.InstructionIndex >= 0 && v.InstructionIndex < len(v.Instructions):
		vehicle.StopId = proto.String(v.Instructions[v.InstructionIndex].To)
		vehicle.CurrentStopSequence = proto.Uint32(uint32(v.InstructionIndex))
		vehicle.CurrentStatus = gtfs.VehiclePosition_IN_TRANSIT_TO.Enum()
	}

	feed.Entity = []*gtfs.FeedEntity{{
		Id:      proto.String(g.vehicleID),
		Vehicle: vehicle,
	}}
	return feed
}

func (g *GTFSRealtime) WriteTo(w io.Writer) (int64, error) {
	data, err := proto.Marshal(g.Feed())
	if err != nil {
		return 0, fmt.Errorf("failed to encode feed: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WalkerPosition is a decoded VehiclePosition entity
type WalkerPosition struct {
	EntityID  string
	VehicleID *string
	TripID    *string
	RouteID   *string
	StopID    *string
	Sequence  *int
	Status    string
	Latitude  *float64
	Longitude *float64
	Bearing   *float64
	Timestamp *time.Time
}

// DecodePositions parses a GTFS-RT feed and returns its vehicle positions
func DecodePositions(data []byte) ([]WalkerPosition, error) {
	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		return nil, fmt.Errorf("failed to parse protobuf: %w", err)
	}

	var positions []WalkerPosition
	for _, entity := range feed.Entity {
		if entity.Vehicle == nil {
			continue
		}
		vehicle := entity.Vehicle

		pos := WalkerPosition{EntityID: entity.GetId(), StopID: vehicle.StopId}
		if vehicle.Vehicle != nil {
			pos.VehicleID = vehicle.Vehicle.Id
		}
		if vehicle.Trip != nil {
			pos.TripID = vehicle.Trip.TripId
			pos.RouteID = vehicle.Trip.RouteId
		}

		if vehicle.Position != nil {
			if vehicle.Position.Latitude != nil {
				lat := float64(*vehicle.Position.Latitude)
				pos.Latitude = &lat
			}
			if vehicle.Position.Longitude != nil {
				lng := float64(*vehicle.Position.Longitude)
				pos.Longitude = &lng
			}
			if vehicle.Position.Bearing != nil {
				b := float64(*vehicle.Position.Bearing)
				pos.Bearing = &b
			}
		}

		if vehicle.CurrentStopSequence != nil {
			seq := int(*vehicle.CurrentStopSequence)
			pos.Sequence = &seq
		}
		if vehicle.CurrentStatus != nil {
			if status, ok := StatusMap[int32(*vehicle.CurrentStatus)]; ok {
				pos.Status = status
			}
		}
		if vehicle.Timestamp != nil {
			ts := time.Unix(int64(*vehicle.Timestamp), 0).UTC()
			pos.Timestamp = &ts
		}

		positions = append(positions, pos)
	}
	return positions, nil
}
