// Package config loads and validates the tracker configuration from
// config.yml, a .env file, and environment variable overrides.
package config
