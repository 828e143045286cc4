package bustracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/bus-tracker/config"
	"github.com/theoremus-urban-solutions/bus-tracker/registry"
)

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	cfg := &config.AppConfig{}
	cfg.Server.Port = 0
	reg := registry.New()
	return NewServer(cfg, reg, nil), reg
}

func postLocation(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestUpdateLocationEndpoint(t *testing.T) {
	srv, reg := newTestServer(t)

	w := postLocation(t, srv, `{"device_id":"BUS_101","lat":11.3580,"lon":77.7120,"speed":35}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp updateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Data.DeviceID != "BUS_101" || resp.Data.Lat != 11.3580 {
		t.Errorf("unexpected stored record: %+v", resp.Data)
	}
	if resp.Data.DriverName != registry.DefaultDriverName {
		t.Errorf("expected default driver, got %q", resp.Data.DriverName)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 record in registry, got %d", reg.Len())
	}
}

func TestUpdateLocationCoercesNumericStrings(t *testing.T) {
	srv, reg := newTestServer(t)

	w := postLocation(t, srv, `{"device_id":"BUS_101","lat":"11.3580","lon":"77.7120","speed":"35"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	rec, err := reg.Get("BUS_101")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.Lat != 11.3580 || rec.Speed != 35 {
		t.Errorf("coercion failed: %+v", rec)
	}
}

func TestUpdateLocationRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing lat",
			body: `{"device_id":"BUS_101","lon":77.7120}`,
			want: "lat",
		},
		{
			name: "missing device_id",
			body: `{"lat":11.3580,"lon":77.7120}`,
			want: "device_id",
		},
		{
			// The decode error quotes the offending value; field
			// context is unavailable for custom unmarshalers.
			name: "non-numeric lat",
			body: `{"device_id":"BUS_101","lat":"north","lon":77.7120}`,
			want: `"north"`,
		},
		{
			name: "not json",
			body: `device_id=BUS_101`,
			want: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reg := newTestServer(t)
			w := postLocation(t, srv, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if !strings.Contains(resp.Error, tt.want) {
				t.Errorf("expected %q in error %q", tt.want, resp.Error)
			}
			if resp.Example == nil {
				t.Error("expected example payload in rejection")
			}
			if reg.Len() != 0 {
				t.Error("rejected update must not create a record")
			}
		})
	}
}

func TestGetLocationEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	postLocation(t, srv, `{"device_id":"BUS_101","lat":11.3580,"lon":77.7120,"speed":35,"bus_number":"101"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/locations/BUS_101", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var rec registry.LocationRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rec.DeviceID != "BUS_101" || rec.BusNumber != "101" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestGetLocationNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	postLocation(t, srv, `{"device_id":"BUS_101","lat":11.3580,"lon":77.7120}`)
	postLocation(t, srv, `{"device_id":"BUS_202","lat":11.3600,"lon":77.7100}`)

	req := httptest.NewRequest(http.MethodGet, "/api/locations/BUS_404", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.AvailableBuses) != 2 {
		t.Errorf("expected 2 known ids as hint, got %v", resp.AvailableBuses)
	}
}

func TestListLocationsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Empty registry: zero count, null last_updated.
	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var empty listResponse
	if err := json.NewDecoder(w.Body).Decode(&empty); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if empty.Count != 0 || empty.LastUpdated != nil {
		t.Errorf("unexpected empty listing: %+v", empty)
	}

	postLocation(t, srv, `{"device_id":"BUS_101","lat":11.3580,"lon":77.7120}`)
	postLocation(t, srv, `{"device_id":"BUS_202","lat":11.3600,"lon":77.7100}`)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/locations", nil))
	var resp listResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Count != 2 || len(resp.Buses) != 2 {
		t.Errorf("expected 2 buses, got %+v", resp)
	}
	if resp.LastUpdated == nil {
		t.Fatal("expected last_updated to be set")
	}
	var maxTS int64
	for _, b := range resp.Buses {
		if ts := b.Updated.UnixMilli(); ts > maxTS {
			maxTS = ts
		}
	}
	if *resp.LastUpdated != maxTS {
		t.Errorf("last_updated %d != max record timestamp %d", *resp.LastUpdated, maxTS)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	postLocation(t, srv, `{"device_id":"BUS_101","lat":11.3580,"lon":77.7120}`)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.BusesTracked != 1 {
		t.Errorf("expected 1 bus tracked, got %d", resp.BusesTracked)
	}
	if resp.UptimeSeconds < 0 {
		t.Errorf("negative uptime %d", resp.UptimeSeconds)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/locations", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
