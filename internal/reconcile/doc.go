// Package reconcile turns per-user ownership rows into a filtered,
// deduplicated comparison across users.
//
// The pipeline runs in fixed stages: ingest every user's owned titles,
// assign each release key a canonical slug and an IGDB lookup key, sort by
// (slug, platform preference), merge adjacent entries that agree on both
// slug and owner set, resolve classification through the IGDB client, and
// apply the request's filters. Entries with the same slug but different
// owner sets never merge; without owner-set agreement the engine cannot
// assume two storefront listings are the same game.
//
// Options is an immutable request-scoped value; build a new one per request
// instead of mutating shared state.
package reconcile
