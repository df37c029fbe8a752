// Package config loads, normalizes, and validates transcriptor configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRANSCRIPTOR_OUTPUT_DIR and YTDLP_PATH. A .env file in the working directory
// is loaded before the environment is consulted so local overrides do not need
// to be exported by hand.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language lists, and clear validation errors.
package config
