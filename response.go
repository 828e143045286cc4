package bustracker

import (
	"encoding/json"
	"net/http"

	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

type updateResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    registry.LocationRecord `json:"data"`
}

type listResponse struct {
	Count       int                       `json:"count"`
	Buses       []registry.LocationRecord `json:"buses"`
	LastUpdated *int64                    `json:"last_updated"`
}

type errorResponse struct {
	Error          string                   `json:"error"`
	Example        *registry.LocationUpdate `json:"example,omitempty"`
	AvailableBuses []string                 `json:"available_buses,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// exampleUpdate is included in validation error responses so hardware
// integrators can see a working payload next to the rejection.
func exampleUpdate() *registry.LocationUpdate {
	lat := registry.Coord(11.3580)
	lon := registry.Coord(77.7120)
	speed := registry.Coord(35)
	return &registry.LocationUpdate{
		DeviceID: "BUS_101",
		Lat:      &lat,
		Lon:      &lon,
		Speed:    &speed,
	}
}
