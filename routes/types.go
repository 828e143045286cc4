package routes

import "github.com/theoremus-urban-solutions/bus-tracker/geo"

// Stop is a named stop position on a route.
type Stop struct {
	ID            string  `yaml:"id" json:"id" validate:"required"`
	Name          string  `yaml:"name" json:"name" validate:"required"`
	Lat           float64 `yaml:"lat" json:"lat"`
	Lon           float64 `yaml:"lon" json:"lon"`
	ScheduledTime string  `yaml:"scheduledTime" json:"scheduled_time,omitempty"`
}

// Point converts a stop to the estimator's input shape.
func (s Stop) Point() geo.StopPoint {
	return geo.StopPoint{ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon}
}

// Route is an ordered sequence of stops between two terminals.
type Route struct {
	ID         string  `yaml:"id" json:"id" validate:"required"`
	From       string  `yaml:"from" json:"from"`
	To         string  `yaml:"to" json:"to"`
	DistanceKM float64 `yaml:"distanceKM" json:"distance_km"`
	Stops      []Stop  `yaml:"stops" json:"stops" validate:"required,dive"`
}

// Points returns the route's stops in the estimator's input shape,
// preserving order.
func (r Route) Points() []geo.StopPoint {
	pts := make([]geo.StopPoint, 0, len(r.Stops))
	for _, s := range r.Stops {
		pts = append(pts, s.Point())
	}
	return pts
}

// Find returns the route with the given id.
func Find(rs []Route, id string) (Route, bool) {
	for _, r := range rs {
		if r.ID == id {
			return r, true
		}
	}
	return Route{}, false
}
