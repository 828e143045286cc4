package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Registry is the device-id → latest-record store. All methods are safe
// for concurrent use; a single RWMutex guards the map and records are
// stored by value, so a reader sees either the previous or the new
// record, never a mix.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]LocationRecord
	validate *validator.Validate

	afterUpsert func(LocationRecord)
}

// New constructs an empty registry. One instance is created at process
// start and passed to every consumer; there is no package-level store.
func New() *Registry {
	return &Registry{
		records:  map[string]LocationRecord{},
		validate: validator.New(),
	}
}

// Upsert validates an update and replaces the device's record in full.
// Omitted optional fields re-apply their defaults rather than
// preserving previous values. The stored record is returned; on a
// *ValidationError no state changes.
func (r *Registry) Upsert(u LocationUpdate) (LocationRecord, error) {
	if err := r.validate.Struct(u); err != nil {
		verr := &ValidationError{}
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				verr.Fields = append(verr.Fields, wireFieldName(fe.Field()))
			}
		} else {
			verr.Fields = append(verr.Fields, "update")
		}
		return LocationRecord{}, verr
	}

	rec := LocationRecord{
		DeviceID:   u.DeviceID,
		Lat:        float64(*u.Lat),
		Lon:        float64(*u.Lon),
		DriverName: DefaultDriverName,
		BusNumber:  u.DeviceID,
		Status:     StatusActive,
		Updated:    time.Now(),
	}
	if u.Speed != nil {
		rec.Speed = float64(*u.Speed)
	}
	if u.DriverName != "" {
		rec.DriverName = u.DriverName
	}
	if u.BusNumber != "" {
		rec.BusNumber = u.BusNumber
	}
	if u.Status != "" {
		rec.Status = u.Status
	}

	r.mu.Lock()
	r.records[rec.DeviceID] = rec
	r.mu.Unlock()
	if r.afterUpsert != nil {
		r.afterUpsert(rec)
	}
	return rec, nil
}

// AfterUpsert registers fn to run with the stored record after every
// successful upsert, outside the registry lock. All write paths go
// through Upsert, so one hook observes every accepted record no matter
// which subsystem reported it. Register before sharing the registry;
// the hook itself is not guarded.
func (r *Registry) AfterUpsert(fn func(LocationRecord)) {
	r.afterUpsert = fn
}

// Get returns the current record for a device, or a *NotFoundError
// carrying the known ids.
func (r *Registry) Get(deviceID string) (LocationRecord, error) {
	r.mu.RLock()
	rec, ok := r.records[deviceID]
	if !ok {
		known := r.knownIDsLocked()
		r.mu.RUnlock()
		return LocationRecord{}, &NotFoundError{DeviceID: deviceID, Known: known}
	}
	r.mu.RUnlock()
	return rec, nil
}

// List returns a snapshot of all current records. Order carries no
// meaning.
func (r *Registry) List() []LocationRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LocationRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}

// Len reports the number of tracked devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// LastUpdated returns the most recent write instant across all records,
// or the zero time when the registry is empty.
func (r *Registry) LastUpdated() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var max time.Time
	for _, rec := range r.records {
		if rec.Updated.After(max) {
			max = rec.Updated
		}
	}
	return max
}

// KnownIDs returns the sorted ids of all tracked devices.
func (r *Registry) KnownIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.knownIDsLocked()
}

func (r *Registry) knownIDsLocked() []string {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarkOffline flips the status of every device whose last update is
// older than maxAge to offline and reports how many were flipped. The
// record and its Updated instant are otherwise untouched, so listings
// stay monotonic and the stale position remains visible.
func (r *Registry) MarkOffline(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, rec := range r.records {
		if rec.Status != StatusOffline && rec.Updated.Before(cutoff) {
			rec.Status = StatusOffline
			r.records[id] = rec
			n++
		}
	}
	return n
}

// wireFieldName maps validator struct field names to their JSON names.
func wireFieldName(structField string) string {
	switch structField {
	case "DeviceID":
		return "device_id"
	case "Lat":
		return "lat"
	case "Lon":
		return "lon"
	case "Speed":
		return "speed"
	case "DriverName":
		return "driver_name"
	case "BusNumber":
		return "bus_number"
	case "Status":
		return "status"
	}
	return structField
}
