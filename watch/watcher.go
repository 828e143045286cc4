package watch

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/theoremus-urban-solutions/bus-tracker/geo"
	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

// Source labels where a rendered position came from. Simulated frames
// are produced only after a failed poll and are always labeled; they
// must never be mistaken for telemetry.
type Source string

const (
	SourceLive      Source = "live"
	SourceSimulated Source = "SIMULATED"
)

// Watcher polls one device at a fixed interval and renders its state
// together with per-stop arrival estimates. A failed poll is retried
// on the next tick; in between, the last known position is advanced by
// a small random walk so the display keeps moving, labeled SIMULATED.
type Watcher struct {
	client   *Client
	deviceID string
	interval time.Duration
	stops    []geo.StopPoint
	out      io.Writer
	rnd      *rand.Rand

	last *registry.LocationRecord
}

func NewWatcher(client *Client, deviceID string, interval time.Duration, stops []geo.StopPoint, out io.Writer) *Watcher {
	return &Watcher{
		client:   client,
		deviceID: deviceID,
		interval: interval,
		stops:    stops,
		out:      out,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run polls immediately and then on every tick until the context is
// cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.tick(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	rec, err := w.client.GetLocation(ctx, w.deviceID)
	if err == nil {
		w.last = &rec
		w.render(rec, SourceLive)
		return
	}
	fmt.Fprintf(w.out, "fetch failed: %v\n", err)
	if w.last == nil {
		return
	}
	sim := SimulateStep(*w.last, w.rnd)
	w.last = &sim
	w.render(sim, SourceSimulated)
}

// SimulateStep produces the degraded-mode successor of a record: the
// position drifts by up to ~0.001 degrees per axis and the speed by up
// to ±7.5 km/h, clamped at zero. Updated is stamped with the local
// clock so the display shows when the frame was fabricated.
func SimulateStep(prev registry.LocationRecord, rnd *rand.Rand) registry.LocationRecord {
	next := prev
	next.Lat += (rnd.Float64() - 0.5) * 0.002
	next.Lon += (rnd.Float64() - 0.5) * 0.002
	next.Speed = math.Round(math.Max(0, prev.Speed+(rnd.Float64()-0.5)*15))
	next.Updated = time.Now()
	return next
}

func (w *Watcher) render(rec registry.LocationRecord, src Source) {
	fmt.Fprintf(w.out, "[%s] bus %s (%s) driver=%s status=%s speed=%.0f km/h at (%.4f, %.4f) updated=%s\n",
		src, rec.BusNumber, rec.DeviceID, rec.DriverName, rec.Status, rec.Speed,
		rec.Lat, rec.Lon, rec.Updated.Format(time.RFC3339))

	if len(w.stops) == 0 {
		return
	}
	ests := geo.EstimateStops(rec.Lat, rec.Lon, rec.Speed, w.stops)
	if next, ok := geo.NearestStop(ests); ok {
		fmt.Fprintf(w.out, "[%s]   next stop: %s in %s (%.2f km)\n",
			src, next.Stop.Name, geo.FormatETA(next.ETA), next.DistanceKM)
	} else {
		fmt.Fprintf(w.out, "[%s]   next stop: n/a\n", src)
	}
	n := len(ests)
	if n > 5 {
		n = 5
	}
	for _, e := range ests[:n] {
		fmt.Fprintf(w.out, "[%s]   %-24s %6.2f km  %s\n",
			src, e.Stop.Name, e.DistanceKM, geo.FormatETA(e.ETA))
	}
}
