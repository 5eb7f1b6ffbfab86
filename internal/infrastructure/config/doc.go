// Package config loads and validates the bridge configuration.
//
// Configuration is read from a YAML file with environment variable
// overrides for secrets (MQTT credentials, API token, InfluxDB token).
// Validation happens once at load time; the rest of the application
// can assume a well-formed Config.
package config
