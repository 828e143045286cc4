package geo

import (
	"fmt"
	"math"
)

// ETAKind distinguishes a numeric arrival estimate from the degenerate
// speed categories. Dividing distance by a vanishing speed yields a
// number too large to mean anything, so those cases are reported as a
// category instead.
type ETAKind int

const (
	// ETAMinutes is a normal numeric estimate.
	ETAMinutes ETAKind = iota
	// ETAStopped means the vehicle reported zero speed.
	ETAStopped
	// ETAVerySlow means the vehicle is moving below 1 km/h.
	ETAVerySlow
)

// ETA is the outcome of an arrival estimate. Minutes is meaningful only
// when Kind is ETAMinutes; callers must branch on Kind rather than
// treating a categorical result as zero minutes.
type ETA struct {
	Kind    ETAKind
	Minutes int
}

// EstimateETA converts a distance and a current speed into an arrival
// estimate. Speed of exactly zero yields ETAStopped, a speed below
// 1 km/h yields ETAVerySlow, anything else yields the travel time in
// whole minutes.
func EstimateETA(distanceKM, speedKMH float64) ETA {
	if speedKMH == 0 {
		return ETA{Kind: ETAStopped}
	}
	if speedKMH < 1 {
		return ETA{Kind: ETAVerySlow}
	}
	return ETA{
		Kind:    ETAMinutes,
		Minutes: int(math.Round(distanceKM / speedKMH * 60)),
	}
}

// FormatETA renders an estimate for display: categorical results keep
// their label, sub-minute estimates render as "Arriving", estimates
// under an hour as "{n}m", and longer ones as "{h}h" or "{h}h {m}m".
func FormatETA(eta ETA) string {
	switch eta.Kind {
	case ETAStopped:
		return "Stopped"
	case ETAVerySlow:
		return "Very Slow"
	}
	if eta.Minutes < 1 {
		return "Arriving"
	}
	if eta.Minutes < 60 {
		return fmt.Sprintf("%dm", eta.Minutes)
	}
	h := eta.Minutes / 60
	m := eta.Minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
