// Package metrics exposes Prometheus instrumentation for the tracker
// on a dedicated registry, served separately from the API port.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	DevicesTracked prometheus.Gauge

	UpdatesAccepted prometheus.Counter
	UpdatesRejected prometheus.Counter
	Lookups         prometheus.Counter
	LookupsNotFound prometheus.Counter
	Listings        prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	IngestPolls    prometheus.Counter
	IngestPollErrs prometheus.Counter

	UpdateDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		DevicesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bustracker_devices_tracked",
			Help: "Number of devices with a stored location record.",
		}),
		UpdatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_updates_accepted_total",
			Help: "Total location updates stored.",
		}),
		UpdatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_updates_rejected_total",
			Help: "Total location updates rejected by validation.",
		}),
		Lookups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_lookups_total",
			Help: "Total single-device lookups.",
		}),
		LookupsNotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_lookups_not_found_total",
			Help: "Total lookups for unknown devices.",
		}),
		Listings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_listings_total",
			Help: "Total bulk listing requests.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bustracker_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		IngestPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_gtfsrt_polls_total",
			Help: "Total GTFS-RT feed polls.",
		}),
		IngestPollErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bustracker_gtfsrt_poll_errors_total",
			Help: "Total failed GTFS-RT feed polls.",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bustracker_update_duration_seconds",
			Help:    "Duration of update request handling.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
	}

	reg.MustRegister(
		c.DevicesTracked,
		c.UpdatesAccepted, c.UpdatesRejected,
		c.Lookups, c.LookupsNotFound, c.Listings,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.IngestPolls, c.IngestPollErrs,
		c.UpdateDuration,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
