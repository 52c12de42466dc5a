// Package igdb resolves game metadata through the IGDB API.
//
// The client owns Twitch token acquisition and renewal, enforces the
// process-wide minimum spacing between calls (the id, classification, and
// multiplayer endpoints all share one upstream rate limit), and backs off
// linearly while calls keep failing. Results land in the igdbcache document;
// every resolve operation is cache-checked and idempotent, so driving them
// repeatedly costs at most one network call each.
//
// Lookup failures are non-raising by contract: a failed call logs, bumps the
// failure counter, and leaves the caller with an empty result. The one hard
// precondition is authentication — callers must not drive lookups when
// Authenticate reports failure.
package igdb
