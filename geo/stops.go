package geo

import "sort"

// StopPoint is the minimal stop shape the estimator needs. Static route
// data owns the richer representation; this package only sees
// coordinates and identity.
type StopPoint struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// StopEstimate pairs a stop with its distance from a vehicle and the
// arrival estimate at the vehicle's current speed.
type StopEstimate struct {
	Stop       StopPoint
	DistanceKM float64
	ETA        ETA
}

// EstimateStops computes distance and ETA from the vehicle position to
// every stop and returns the results ordered by ascending distance.
// The sort is stable, so stops at equal distance keep their original
// order.
func EstimateStops(lat, lon, speedKMH float64, stops []StopPoint) []StopEstimate {
	ests := make([]StopEstimate, 0, len(stops))
	for _, s := range stops {
		d := DistanceKM(lat, lon, s.Lat, s.Lon)
		ests = append(ests, StopEstimate{
			Stop:       s,
			DistanceKM: d,
			ETA:        EstimateETA(d, speedKMH),
		})
	}
	sort.SliceStable(ests, func(i, j int) bool {
		return ests[i].DistanceKM < ests[j].DistanceKM
	})
	return ests
}

// NearestStop returns the closest stop with a positive numeric ETA,
// which callers present as the vehicle's next stop. The second return
// is false when no stop qualifies (vehicle stopped, or already at
// every remaining stop).
func NearestStop(ests []StopEstimate) (StopEstimate, bool) {
	for _, e := range ests {
		if e.ETA.Kind == ETAMinutes && e.ETA.Minutes > 0 {
			return e, true
		}
	}
	return StopEstimate{}, false
}
