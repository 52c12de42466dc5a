// Package logging constructs the slog loggers used across gamatrix.
//
// It exposes a small Options type for level/format selection, typed attr
// helpers so call sites stay consistent, and component child loggers that tag
// every record with the subsystem that emitted it. Obtain loggers through this
// package rather than calling slog directly so output format and level
// handling stay uniform between the CLI and server modes.
package logging
