package reconcile

import (
	"sort"
	"strings"
)

// PlatformPreference orders storefronts by how well their release keys
// resolve against IGDB. The first owned storefront in this order decides
// which entry survives a merge.
var PlatformPreference = []string{
	"steam",
	"gog",
	"battlenet",
	"bethesda",
	"epic",
	"origin",
	"uplay",
	"xboxone",
}

// platformRank returns the sort rank for a storefront. Unknown storefronts
// sort after every known one so they still get a stable position.
func platformRank(platform string) int {
	for i, p := range PlatformPreference {
		if p == platform {
			return i
		}
	}
	return len(PlatformPreference)
}

// Game is one comparison result: a title and everything known about who
// owns it, where, and how many can play it.
type Game struct {
	// ReleaseKey is the storefront key the entry was first seen under.
	ReleaseKey string `json:"release_key"`
	// Title is the display title from the first database that listed it.
	Title string `json:"title"`
	// Slug is the normalized form of Title used for dedup and overrides.
	Slug string `json:"slug"`
	// IGDBKey is the release key used for metadata lookups; it can differ
	// from ReleaseKey when a better-resolving storefront key exists.
	IGDBKey string `json:"igdb_key"`

	// Owners and Installed hold sorted user ids. Installed is always a
	// subset of Owners.
	Owners    []int64 `json:"owners"`
	Installed []int64 `json:"installed"`

	// Platforms lists every storefront the owners hold the title on.
	Platforms []string `json:"platforms"`

	MaxPlayers  int    `json:"max_players"`
	Multiplayer bool   `json:"multiplayer"`
	Comment     string `json:"comment,omitempty"`

	// Unclassified marks titles whose player count never resolved: no
	// configured override and nothing usable from IGDB.
	Unclassified bool `json:"unclassified"`

	// fromConfig is set when MaxPlayers came from a configured override,
	// which wins over anything IGDB reports.
	fromConfig bool
}

// Platform returns the storefront prefix of the entry's release key.
func (g *Game) Platform() string {
	platform, _, _ := strings.Cut(g.ReleaseKey, "_")
	return platform
}

// OwnedBy reports whether the user owns the title.
func (g *Game) OwnedBy(userID int64) bool {
	return containsID(g.Owners, userID)
}

// InstalledBy reports whether the user has the title installed.
func (g *Game) InstalledBy(userID int64) bool {
	return containsID(g.Installed, userID)
}

func (g *Game) addOwner(userID int64) {
	if !containsID(g.Owners, userID) {
		g.Owners = append(g.Owners, userID)
	}
}

func (g *Game) addInstalled(userID int64) {
	if !containsID(g.Installed, userID) {
		g.Installed = append(g.Installed, userID)
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sameOwners(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
