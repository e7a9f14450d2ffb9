// Package config loads YAML configuration for the wslink commands.
//
// Files may reference environment variables with ${VAR} syntax; they
// are expanded before parsing. Optional fields fall back to the
// documented session defaults.
package config
