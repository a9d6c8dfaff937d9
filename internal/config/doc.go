// Package config loads the server and CLI settings from defaults, an
// optional config.yaml, a .env file and FLASHGEN_* environment variables,
// and validates the result before any component is built.
package config
