package geo

import (
	"math"
	"testing"
)

func TestEstimateStopsSortedByDistance(t *testing.T) {
	stops := []StopPoint{
		{ID: "far", Name: "Far", Lat: 11.2100, Lon: 77.6500},
		{ID: "near", Name: "Near", Lat: 11.1863, Lon: 77.6232},
	}

	ests := EstimateStops(11.1950, 77.6350, 35, stops)
	if len(ests) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(ests))
	}
	if ests[0].Stop.ID != "near" || ests[1].Stop.ID != "far" {
		t.Errorf("expected [near far], got [%s %s]", ests[0].Stop.ID, ests[1].Stop.ID)
	}
	if ests[0].DistanceKM > ests[1].DistanceKM {
		t.Errorf("estimates not sorted: %v > %v", ests[0].DistanceKM, ests[1].DistanceKM)
	}
}

func TestEstimateStopsStableOnTies(t *testing.T) {
	// Two stops at the exact same point must keep their input order.
	stops := []StopPoint{
		{ID: "first", Lat: 11.3500, Lon: 77.7200},
		{ID: "second", Lat: 11.3500, Lon: 77.7200},
	}

	ests := EstimateStops(11.3580, 77.7120, 20, stops)
	if ests[0].Stop.ID != "first" || ests[1].Stop.ID != "second" {
		t.Errorf("tie not stable: got [%s %s]", ests[0].Stop.ID, ests[1].Stop.ID)
	}
}

func TestNearestStopSelection(t *testing.T) {
	// The live-tracking scenario: bus at speed 35 between two stops.
	// The nearer stop (~1.6 km) wins with a small positive ETA.
	stops := []StopPoint{
		{ID: "stop_a", Name: "A", Lat: 11.1863, Lon: 77.6232},
		{ID: "stop_b", Name: "B", Lat: 11.2100, Lon: 77.6500},
	}

	ests := EstimateStops(11.1950, 77.6350, 35, stops)
	next, ok := NearestStop(ests)
	if !ok {
		t.Fatal("expected a next stop")
	}
	if next.Stop.ID != "stop_a" {
		t.Errorf("expected stop_a as next, got %s", next.Stop.ID)
	}
	if math.Abs(next.DistanceKM-1.61) > 0.05 {
		t.Errorf("expected ~1.61 km to next stop, got %v", next.DistanceKM)
	}
	if next.ETA.Kind != ETAMinutes || next.ETA.Minutes != 3 {
		t.Errorf("expected 3 minute ETA, got %+v", next.ETA)
	}
}

func TestNearestStopStoppedBus(t *testing.T) {
	stops := []StopPoint{
		{ID: "stop_a", Lat: 11.1863, Lon: 77.6232},
	}

	ests := EstimateStops(11.1950, 77.6350, 0, stops)
	if _, ok := NearestStop(ests); ok {
		t.Error("stopped bus must not have a next stop")
	}
}

func TestNearestStopSkipsArrived(t *testing.T) {
	// A stop the bus is standing on has ETA 0 and must be skipped in
	// favor of the next one out.
	stops := []StopPoint{
		{ID: "here", Lat: 11.1950, Lon: 77.6350},
		{ID: "ahead", Lat: 11.2100, Lon: 77.6500},
	}

	ests := EstimateStops(11.1950, 77.6350, 35, stops)
	next, ok := NearestStop(ests)
	if !ok {
		t.Fatal("expected a next stop")
	}
	if next.Stop.ID != "ahead" {
		t.Errorf("expected ahead, got %s", next.Stop.ID)
	}
}
