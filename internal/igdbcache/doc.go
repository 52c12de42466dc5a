// Package igdbcache persists IGDB lookup results between runs.
//
// The cache is a JSON document on disk, read once at startup and written once
// at the end of a run. gamatrix owns only the "igdb" region of the root
// object; any other keys round-trip untouched, so the same file can host
// unrelated cached data. Inside the region live the per-key game entries and
// the Twitch access token, which survives across runs until the API rejects
// it.
//
// A game entry's presence records that a lookup was attempted; an entry with
// IGDBID zero means "looked up, confirmed absent", which is deliberately
// distinct from the key being missing. Entries are never deleted within a
// run.
//
// All mutations go through the Set methods so the dirty flag stays accurate;
// Save is a no-op while the document is clean. The document file is guarded
// by an advisory flock for the duration of the read-modify-write cycle.
package igdbcache
