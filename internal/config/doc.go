// Package config loads, normalizes, and validates tagflow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TAGFLOW_SECRET_KEY. The Config type centralizes every knob the daemon and CLI
// need, including the workflow policies that decide whether finishing a task
// requires complete answers and when a question may be deleted.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
