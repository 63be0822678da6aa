// Package config loads, normalizes, and validates eventsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional dotenv file, and honours
// EVENTSORT_* environment overrides. The Config type centralizes every knob the
// sorting pipeline and CLI need: source and target roots, worker counts, the
// epoch and clustering thresholds, and the placement folder names.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a resolved timezone, and clear validation errors.
package config
