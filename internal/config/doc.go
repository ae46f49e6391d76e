// Package config loads and validates YAML configuration with ${VAR}
// environment substitution and sensible defaults.
package config
