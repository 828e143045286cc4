package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the reporting state of a device. It is a closed set,
// validated at the registry boundary.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
	StatusOffline Status = "offline"
)

// DefaultDriverName is stored when an update omits driver_name.
const DefaultDriverName = "Unknown Driver"

// Coord accepts both JSON numbers and numeric strings, since tracking
// firmware is inconsistent about which it sends.
type Coord float64

func (c *Coord) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("empty numeric value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q", s)
	}
	*c = Coord(f)
	return nil
}

// LocationUpdate is the inbound shape of a device report. Lat and Lon
// are pointers so a missing field is distinguishable from zero.
type LocationUpdate struct {
	DeviceID   string `json:"device_id" validate:"required"`
	Lat        *Coord `json:"lat" validate:"required"`
	Lon        *Coord `json:"lon" validate:"required"`
	Speed      *Coord `json:"speed,omitempty"`
	DriverName string `json:"driver_name,omitempty"`
	BusNumber  string `json:"bus_number,omitempty"`
	Status     Status `json:"status,omitempty" validate:"omitempty,oneof=active stopped offline"`
}

// LocationRecord is the last known state of one device. Updated is the
// single authoritative instant of the last write; both wire timestamp
// fields are derived from it at marshal time.
type LocationRecord struct {
	DeviceID   string
	Lat        float64
	Lon        float64
	Speed      float64
	DriverName string
	BusNumber  string
	Status     Status
	Updated    time.Time
}

type recordWire struct {
	DeviceID   string  `json:"device_id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Speed      float64 `json:"speed"`
	DriverName string  `json:"driver_name"`
	BusNumber  string  `json:"bus_number"`
	Status     Status  `json:"status"`
	Updated    string  `json:"updated"`
	Timestamp  int64   `json:"timestamp"`
}

func (r LocationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordWire{
		DeviceID:   r.DeviceID,
		Lat:        r.Lat,
		Lon:        r.Lon,
		Speed:      r.Speed,
		DriverName: r.DriverName,
		BusNumber:  r.BusNumber,
		Status:     r.Status,
		Updated:    r.Updated.UTC().Format(time.RFC3339),
		Timestamp:  r.Updated.UnixMilli(),
	})
}

func (r *LocationRecord) UnmarshalJSON(b []byte) error {
	var w recordWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.DeviceID = w.DeviceID
	r.Lat = w.Lat
	r.Lon = w.Lon
	r.Speed = w.Speed
	r.DriverName = w.DriverName
	r.BusNumber = w.BusNumber
	r.Status = w.Status
	if w.Timestamp != 0 {
		r.Updated = time.UnixMilli(w.Timestamp).UTC()
	} else if w.Updated != "" {
		t, err := time.Parse(time.RFC3339, w.Updated)
		if err != nil {
			return err
		}
		r.Updated = t
	}
	return nil
}
