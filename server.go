package bustracker

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/theoremus-urban-solutions/bus-tracker/config"
	"github.com/theoremus-urban-solutions/bus-tracker/metrics"
	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

// Server is the HTTP boundary over the registry. It owns no location
// state of its own; every handler reads or writes the one registry
// instance it was constructed with. Fan-out of accepted updates hangs
// off the registry itself, not the HTTP layer, so feed-ingested writes
// get the same treatment.
type Server struct {
	cfg     *config.AppConfig
	reg     *registry.Registry
	metrics *metrics.Collector
	started time.Time

	httpServer *http.Server
}

// NewServer wires the handlers to a registry. mcol may be nil;
// instrumentation is then skipped.
func NewServer(cfg *config.AppConfig, reg *registry.Registry, mcol *metrics.Collector) *Server {
	return &Server{
		cfg:     cfg,
		reg:     reg,
		metrics: mcol,
		started: time.Now(),
	}
}

// Router builds the route table. Split out from Start so tests can
// drive the handlers through httptest.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/locations", s.handleUpdateLocation).Methods(http.MethodPost)
	r.HandleFunc("/api/locations", s.handleListLocations).Methods(http.MethodGet)
	r.HandleFunc("/api/locations/{device_id}", s.handleGetLocation).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
	log.Printf("reachable from other devices at http://%s%s", localIP(), addr)
	log.Printf("POST http://localhost%s/api/locations to report a position", addr)
	log.Printf("GET  http://localhost%s/api/locations for all buses", addr)
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM and then drains
// the server.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		} else {
			log.Printf("server shut down successfully")
		}
	}
}

// localIP returns the first non-loopback IPv4 address, for the startup
// log only.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok && !ipn.IP.IsLoopback() {
			if ip4 := ipn.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "localhost"
}
