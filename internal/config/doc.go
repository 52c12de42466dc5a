// Package config loads, normalizes, and validates gamatrix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// IGDB_CLIENT_ID and IGDB_CLIENT_SECRET. The Config type centralizes the
// per-user database list, metadata overrides, hidden titles, and server
// settings the CLI and server modes need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, slugged override keys, and parsed CIDR allow-lists.
package config
