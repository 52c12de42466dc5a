// Package server exposes comparisons over HTTP.
//
// The API is small: list configured users, run a comparison, and accept a
// database upload. Comparisons and uploads share one lock; the Galaxy
// databases and the metadata cache are not safe for concurrent use, so the
// server runs one mutating request at a time and callers queue behind it.
//
// Access control is network-based. An optional CIDR allow-list gates every
// route, and uploads additionally resolve the target user from the caller's
// address, so a user can only replace their own database.
package server
