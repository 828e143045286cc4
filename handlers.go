package bustracker

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bus Tracking System API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/locations":            "Update bus location (for tracking hardware)",
			"GET /api/locations/{device_id}": "Get specific bus location",
			"GET /api/locations":             "Get all bus locations",
			"GET /health":                    "Liveness and tracked-device count",
		},
		"status": "Server is running",
	})
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
		}
	}()

	var update registry.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if s.metrics != nil {
			s.metrics.UpdatesRejected.Inc()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid request body: " + err.Error(),
			Example: exampleUpdate(),
		})
		return
	}

	rec, err := s.reg.Upsert(update)
	if err != nil {
		if s.metrics != nil {
			s.metrics.UpdatesRejected.Inc()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   err.Error(),
			Example: exampleUpdate(),
		})
		return
	}

	if s.metrics != nil {
		s.metrics.UpdatesAccepted.Inc()
	}

	writeJSON(w, http.StatusOK, updateResponse{
		Success: true,
		Message: "Location updated successfully",
		Data:    rec,
	})
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["device_id"]
	if s.metrics != nil {
		s.metrics.Lookups.Inc()
	}
	rec, err := s.reg.Get(deviceID)
	if err != nil {
		var nf *registry.NotFoundError
		if errors.As(err, &nf) {
			if s.metrics != nil {
				s.metrics.LookupsNotFound.Inc()
			}
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:          err.Error(),
				AvailableBuses: nf.Known,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.Listings.Inc()
	}
	buses := s.reg.List()
	resp := listResponse{
		Count: len(buses),
		Buses: buses,
	}
	if last := s.reg.LastUpdated(); !last.IsZero() {
		ms := last.UnixMilli()
		resp.LastUpdated = &ms
	}
	writeJSON(w, http.StatusOK, resp)
}
