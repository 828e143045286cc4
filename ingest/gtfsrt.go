// Package ingest polls a GTFS-Realtime VehiclePositions feed and
// writes each vehicle into the location registry, so a fleet already
// publishing GTFS-RT can be tracked without device-side changes.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

// Metrics is the instrumentation surface the poller reports to.
type Metrics interface {
	PollInc()
	PollErrInc()
}

// Poller periodically fetches a VehiclePositions feed and upserts every
// vehicle entity into the registry.
type Poller struct {
	url        string
	interval   time.Duration
	reg        *registry.Registry
	httpClient *http.Client
	metrics    Metrics
}

func NewPoller(url string, interval time.Duration, reg *registry.Registry, m Metrics) *Poller {
	return &Poller{
		url:        url,
		interval:   interval,
		reg:        reg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		metrics:    m,
	}
}

// Run polls once immediately and then on every tick until the context
// is cancelled. A failed poll is logged and retried next tick; the
// registry keeps serving the previous state meanwhile.
func (p *Poller) Run(ctx context.Context) {
	if err := p.poll(ctx); err != nil {
		log.Printf("gtfsrt poll error: %v", err)
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil {
				log.Printf("gtfsrt poll error: %v", err)
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context) error {
	if p.metrics != nil {
		p.metrics.PollInc()
	}
	fm, err := p.fetchFeed(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PollErrInc()
		}
		return err
	}
	for _, u := range UpdatesFromFeed(fm) {
		if _, err := p.reg.Upsert(u); err != nil {
			log.Printf("gtfsrt upsert %s: %v", u.DeviceID, err)
		}
	}
	return nil
}

func (p *Poller) fetchFeed(ctx context.Context) (*gtfsrtpb.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", p.url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, p.url)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

// UpdatesFromFeed maps VehiclePosition entities to registry updates.
// Entities without an id or a position are skipped. Speed arrives in
// meters per second and is converted to km/h.
func UpdatesFromFeed(fm *gtfsrtpb.FeedMessage) []registry.LocationUpdate {
	if fm == nil {
		return nil
	}
	var updates []registry.LocationUpdate
	for _, e := range fm.Entity {
		if e.Vehicle == nil || e.Vehicle.Position == nil {
			continue
		}
		v := e.Vehicle
		id := ""
		label := ""
		if v.Vehicle != nil {
			if v.Vehicle.Id != nil {
				id = *v.Vehicle.Id
			}
			if v.Vehicle.Label != nil {
				label = *v.Vehicle.Label
			}
		}
		if id == "" && e.Id != nil {
			id = *e.Id
		}
		if id == "" || v.Position.Latitude == nil || v.Position.Longitude == nil {
			continue
		}
		u := registry.LocationUpdate{
			DeviceID:  id,
			Lat:       coord(float64(*v.Position.Latitude)),
			Lon:       coord(float64(*v.Position.Longitude)),
			BusNumber: label,
		}
		if v.Position.Speed != nil {
			u.Speed = coord(float64(*v.Position.Speed) * 3.6)
		}
		updates = append(updates, u)
	}
	return updates
}

func coord(f float64) *registry.Coord {
	c := registry.Coord(f)
	return &c
}
