// Package gogdb reads owned and installed titles out of GOG Galaxy 2.0
// databases.
//
// Each user ships one sqlite database. The owned-titles query mirrors the
// approach from the GOG-Galaxy-Export-Script project: a pair of temp views
// over GamePieces joined through ProductPurchaseDates, grouped so a title
// owned on several storefronts comes back as one row with comma-joined
// release keys. Because temp views are connection-scoped, the reader pins a
// single connection for its lifetime.
//
// The reader is strictly read-only input for the reconciliation engine; it
// never writes back to the database.
package gogdb
