// Package publisher fans accepted location updates out over NATS so
// downstream consumers (dashboards, archivers) can subscribe per bus
// without polling the HTTP API.
package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

// Metrics is the instrumentation surface the publisher reports to.
type Metrics interface {
	PublishedInc()
	PublishErrInc()
	SetConnected(connected bool)
}

type Publisher struct {
	nc      *nats.Conn
	prefix  string
	metrics Metrics
}

// New connects to NATS. Connection state changes are logged and
// reflected in the metrics gauge; publishing continues to buffer
// through reconnects per nats.go defaults.
func New(url, subjectPrefix string, m Metrics) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bus-tracker"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.SetConnected(true)
	}
	return &Publisher{nc: nc, prefix: subjectPrefix, metrics: m}, nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// PublishUpdate publishes a stored record on <prefix>.<device_id>.
func (p *Publisher) PublishUpdate(rec registry.LocationRecord) error {
	subject := fmt.Sprintf("%s.%s", SubjectToken(p.prefix), SubjectToken(rec.DeviceID))
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PublishErrInc()
		} else {
			p.metrics.PublishedInc()
		}
	}
	return err
}

// SubjectToken sanitizes a string for use as a NATS subject token.
func SubjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*', or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
