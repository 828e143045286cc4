package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	lib "github.com/theoremus-urban-solutions/bus-tracker"
	"github.com/theoremus-urban-solutions/bus-tracker/config"
	"github.com/theoremus-urban-solutions/bus-tracker/ingest"
	"github.com/theoremus-urban-solutions/bus-tracker/metrics"
	"github.com/theoremus-urban-solutions/bus-tracker/publisher"
	"github.com/theoremus-urban-solutions/bus-tracker/registry"
	"github.com/theoremus-urban-solutions/bus-tracker/routes"
	"github.com/theoremus-urban-solutions/bus-tracker/watch"
)

func main() {
	mode := flag.String("mode", "serve", "serve|watch")
	cfgPath := flag.String("config", "", "path to config.yml (default ./config.yml)")
	device := flag.String("device", "", "device id to follow (watch mode)")
	routeID := flag.String("route", "", "route id for ETA estimates (watch mode, overrides config)")
	baseURL := flag.String("url", "", "tracker base URL (watch mode, overrides config)")
	intervalMS := flag.Int("interval", 0, "poll interval in milliseconds (watch mode, overrides config)")
	flag.Parse()

	lib.InitLogging()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	switch *mode {
	case "serve":
		runServe(cfg)
	case "watch":
		runWatch(cfg, *device, *routeID, *baseURL, *intervalMS)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runServe(cfg *config.AppConfig) {
	reg := registry.New()

	var mcol *metrics.Collector
	if cfg.Server.MetricsAddr != "" {
		mcol = metrics.NewCollector()
		mcol.Serve(cfg.Server.MetricsAddr)
	}

	var pub *publisher.Publisher
	if cfg.NATS.URL != "" {
		var err error
		pub, err = publisher.New(cfg.NATS.URL, cfg.NATS.SubjectPrefix, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer pub.Close()
	}

	// One hook covers every accepted write: HTTP reports, feed-ingested
	// positions, and the demo seed all fan out and refresh the gauge.
	reg.AfterUpsert(func(rec registry.LocationRecord) {
		if mcol != nil {
			mcol.DevicesTracked.Set(float64(reg.Len()))
		}
		if pub != nil {
			// Best effort; a broker outage must not fail the write.
			if err := pub.PublishUpdate(rec); err != nil {
				log.Printf("publish update %s: %v", rec.DeviceID, err)
			}
		}
	})

	if cfg.Server.Demo {
		seedDemoBus(reg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.GTFSRT.VehiclePositionsURL != "" {
		poller := ingest.NewPoller(
			cfg.GTFSRT.VehiclePositionsURL,
			time.Duration(cfg.GTFSRT.ReadIntervalMS)*time.Millisecond,
			reg,
			wrapIngestMetrics(mcol),
		)
		go poller.Run(ctx)
		log.Printf("gtfsrt ingest enabled: %s", cfg.GTFSRT.VehiclePositionsURL)
	}

	if cfg.Server.StaleAfterSec > 0 {
		staleAfter := time.Duration(cfg.Server.StaleAfterSec) * time.Second
		c := cron.New()
		_, err := c.AddFunc("@every 30s", func() {
			if n := reg.MarkOffline(staleAfter); n > 0 {
				log.Printf("marked %d silent device(s) offline", n)
			}
		})
		if err != nil {
			log.Fatalf("stale sweep schedule: %v", err)
		}
		c.Start()
		defer c.Stop()
	}

	srv := lib.NewServer(cfg, reg, mcol)
	srv.Start()
	srv.HandleGracefulShutdown()
}

func runWatch(cfg *config.AppConfig, device, routeID, baseURL string, intervalMS int) {
	if device == "" {
		log.Fatal("watch mode requires -device")
	}
	if baseURL == "" {
		baseURL = cfg.Watch.BaseURL
	}
	if intervalMS == 0 {
		intervalMS = cfg.Watch.IntervalMS
	}
	if routeID == "" {
		routeID = cfg.Watch.RouteID
	}

	rts, err := routes.Load(cfg.RoutesFile)
	if err != nil {
		log.Fatalf("routes error: %v", err)
	}
	route, ok := routes.Find(rts, routeID)
	if !ok && len(rts) > 0 {
		route = rts[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("watching %s via %s every %dms (route %s)", device, baseURL, intervalMS, route.ID)
	w := watch.NewWatcher(
		watch.NewClient(baseURL),
		device,
		time.Duration(intervalMS)*time.Millisecond,
		route.Points(),
		log.Writer(),
	)
	w.Run(ctx)
	fmt.Println()
	log.Printf("watch stopped")
}

// seedDemoBus stores one well-known bus so a fresh install has
// something to show before real hardware reports in.
func seedDemoBus(reg *registry.Registry) {
	lat := registry.Coord(11.3580)
	lon := registry.Coord(77.7120)
	speed := registry.Coord(35)
	_, err := reg.Upsert(registry.LocationUpdate{
		DeviceID:   "BUS_101",
		Lat:        &lat,
		Lon:        &lon,
		Speed:      &speed,
		DriverName: "Demo Driver",
		BusNumber:  "101",
		Status:     registry.StatusActive,
	})
	if err != nil {
		log.Printf("demo seed error: %v", err)
		return
	}
	log.Printf("demo bus BUS_101 added for testing")
}

// wrapPublisherMetrics adapts the Collector to the publisher's metrics
// interface; nil in, nil out.
func wrapPublisherMetrics(c *metrics.Collector) publisher.Metrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) PublishedInc()  { p.c.NATSPublished.Inc() }
func (p *pubMetrics) PublishErrInc() { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) SetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}

func wrapIngestMetrics(c *metrics.Collector) ingest.Metrics {
	if c == nil {
		return nil
	}
	return &ingestMetrics{c: c}
}

type ingestMetrics struct{ c *metrics.Collector }

func (i *ingestMetrics) PollInc()    { i.c.IngestPolls.Inc() }
func (i *ingestMetrics) PollErrInc() { i.c.IngestPollErrs.Inc() }
