// Package config loads the service configuration from environment variables
// (and an optional .env file) and validates it.
package config
