// Package config loads, normalizes, and validates dwfx2pdf configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the handful of knobs the
// pipeline depends on: directories, worker count, stability polling, and the
// web bind address. Always obtain settings through this package so downstream
// code receives sanitized paths and clear validation errors.
package config
