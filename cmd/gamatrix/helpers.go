package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gamatrix/internal/reconcile"
)

var errAuthFailed = errors.New("IGDB authentication failed; check igdb.client_id and igdb.client_secret")

func unknownUserError(id int64) error {
	return fmt.Errorf("user id %d is not in the configuration", id)
}

// playersLabel renders the player-count column. Unresolved titles show a
// question mark rather than a misleading number.
func playersLabel(g *reconcile.Game) string {
	switch {
	case g.MaxPlayers > 0:
		return fmt.Sprintf("%d", g.MaxPlayers)
	case g.Multiplayer:
		return "2+"
	default:
		return "?"
	}
}

func platformsLabel(g *reconcile.Game) string {
	platforms := append([]string(nil), g.Platforms...)
	sort.Strings(platforms)
	return strings.Join(platforms, ", ")
}
