// Package config loads service configuration from environment variables
// with envconfig. Every field has an explicit variable name and default;
// Default returns the same values without reading the environment.
package config
