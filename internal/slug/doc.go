// Package slug derives comparison-stable identity strings from game titles.
//
// The slug is used to match the same title across storefronts and as the
// cache key for config-file metadata overrides. It approximates IGDB's
// unpublished slug algorithm; the known gap is apostrophe handling, which
// IGDB replaces with a dash a little less than half the time. Treat misses
// as expected, not as bugs to fix here.
package slug
