package config

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port          int    `yaml:"port" validate:"gte=0"`
	MetricsAddr   string `yaml:"metricsAddr"`
	Demo          bool   `yaml:"demo"`
	StaleAfterSec int    `yaml:"staleAfterSec" validate:"gte=0"`
}

// NATSConfig contains the optional update fan-out configuration. An
// empty URL disables publishing.
type NATSConfig struct {
	URL           string `yaml:"url" validate:"omitempty,uri"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// GTFSRTConfig contains the optional GTFS-Realtime ingest
// configuration. An empty VehiclePositionsURL disables the poller.
type GTFSRTConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	ReadIntervalMS      int    `yaml:"readIntervalMS" validate:"gte=0"`
}

// WatchConfig contains defaults for the polling client mode.
type WatchConfig struct {
	BaseURL    string `yaml:"baseURL" validate:"omitempty,url"`
	IntervalMS int    `yaml:"intervalMS" validate:"gte=0"`
	RouteID    string `yaml:"routeID"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server     ServerConfig `yaml:"server"`
	RoutesFile string       `yaml:"routesFile"`
	NATS       NATSConfig   `yaml:"nats"`
	GTFSRT     GTFSRTConfig `yaml:"gtfsrt"`
	Watch      WatchConfig  `yaml:"watch"`
}
