// Package config loads and merges gatekeeper configuration from the
// config file, environment variables, and CLI flag overrides, in that
// order of precedence over built-in defaults.
package config
