package routes

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads route definitions from a YAML file and validates each
// route. An empty path returns the built-in default route set.
func Load(path string) ([]Route, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	var doc struct {
		Routes []Route `yaml:"routes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	v := validator.New()
	for _, r := range doc.Routes {
		if err := v.Struct(r); err != nil {
			return nil, fmt.Errorf("route %q: %w", r.ID, err)
		}
	}
	return doc.Routes, nil
}

// Default returns the bundled Boothapadi–Mpnmjec route, used when no
// routes file is configured.
func Default() []Route {
	return []Route{
		{
			ID:         "route_1",
			From:       "Boothapadi",
			To:         "Mpnmjec",
			DistanceKM: 45.2,
			Stops: []Stop{
				{ID: "stop_1", Name: "Boothapadi", Lat: 11.3500, Lon: 77.7200},
				{ID: "stop_2", Name: "Poonachi", Lat: 11.3520, Lon: 77.7180},
				{ID: "stop_3", Name: "Chithar", Lat: 11.3540, Lon: 77.7160},
				{ID: "stop_4", Name: "Bhavani BS", Lat: 11.3560, Lon: 77.7140},
				{ID: "stop_5", Name: "Kasipalayam", Lat: 11.3570, Lon: 77.7130},
				{ID: "stop_6", Name: "Kalingarayanpalayam", Lat: 11.3580, Lon: 77.7120},
				{ID: "stop_7", Name: "KK-nagar", Lat: 11.3590, Lon: 77.7110},
				{ID: "stop_8", Name: "Lakshminagar", Lat: 11.3600, Lon: 77.7100},
				{ID: "stop_9", Name: "R.N.pudhur", Lat: 11.3620, Lon: 77.7080},
				{ID: "stop_10", Name: "Agraharam", Lat: 11.3640, Lon: 77.7060},
				{ID: "stop_11", Name: "Erode BS", Lat: 11.3660, Lon: 77.7040},
				{ID: "stop_12", Name: "Savitha & G.H", Lat: 11.3680, Lon: 77.7020},
				{ID: "stop_13", Name: "Diesel Shed", Lat: 11.3700, Lon: 77.7000},
				{ID: "stop_14", Name: "ITI", Lat: 11.3720, Lon: 77.6980},
				{ID: "stop_15", Name: "Mpnmjec", Lat: 11.3740, Lon: 77.6960},
			},
		},
	}
}
