package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gamatrix/internal/igdbcache"
	"gamatrix/internal/logging"
)

// ResolveGameID resolves key's IGDB id by its platform identifier, caching
// the result. A cached id (including the confirmed-absent sentinel) makes
// this a no-op unless force-refresh is set and the cached id is the
// sentinel. It reports whether an id is now known.
func (c *Client) ResolveGameID(ctx context.Context, key string) bool {
	if entry, ok := c.cache.Game(key); ok {
		if entry.IGDBID != 0 {
			return true
		}
		if !c.refresh {
			return false
		}
	}

	platform, uid, found := strings.Cut(key, "_")
	if !found {
		c.logger.Warn("release key has no platform prefix", logging.String("key", key))
		return false
	}

	body := fmt.Sprintf("fields game; where uid = %q", uid)
	if id, ok := externalGamePlatformIDs[platform]; ok {
		body += fmt.Sprintf(" & category = %d", id)
	}
	body += ";"

	data, ok := c.apiRequest(ctx, "/external_games", body)
	if !ok {
		// Transport failure is not confirmation of absence; leave the
		// cache alone so the next run retries.
		return false
	}

	var matches []struct {
		Game int64 `json:"game"`
	}
	if err := json.Unmarshal(data, &matches); err != nil {
		c.logger.Error("parse external_games response",
			logging.String("key", key), logging.Error(err))
		return false
	}

	entry, _ := c.cache.Game(key)
	if len(matches) == 0 {
		// Remember "tried and failed" so the next run skips the call.
		c.logger.Debug("no external game match, caching sentinel",
			logging.String("key", key))
		entry.IGDBID = 0
		c.cache.SetGame(key, entry)
		return false
	}

	// Every element shares the same game id; take the first.
	entry.IGDBID = matches[0].Game
	c.cache.SetGame(key, entry)
	c.logger.Debug("resolved igdb id",
		logging.String("key", key), logging.Int64("igdb_id", entry.IGDBID))
	return true
}

// ResolveGameIDBySlug is the fallback id lookup for keys whose platform
// identifier IGDB cannot match: it queries by the normalized title slug.
// A cached sentinel does not satisfy this lookup — a failed platform-id
// attempt is exactly the state the fallback exists for. A real cached id
// makes it a no-op; empty results cache the sentinel like ResolveGameID.
func (c *Client) ResolveGameIDBySlug(ctx context.Context, key, slug string) bool {
	if entry, ok := c.cache.Game(key); ok && entry.IGDBID != 0 {
		return true
	}

	body := fmt.Sprintf("fields id,name,slug,game_modes; where slug = %q;", slug)
	data, ok := c.apiRequest(ctx, "/games", body)
	if !ok {
		return false
	}

	var matches []igdbcache.GameInfo
	if err := json.Unmarshal(data, &matches); err != nil {
		c.logger.Error("parse games-by-slug response",
			logging.String("key", key), logging.Error(err))
		return false
	}

	entry, _ := c.cache.Game(key)
	if len(matches) == 0 {
		c.logger.Debug("no slug match, caching sentinel",
			logging.String("key", key), logging.String("slug", slug))
		entry.IGDBID = 0
		c.cache.SetGame(key, entry)
		return false
	}

	entry.IGDBID = matches[0].ID
	// The slug query already returns the info payload; keep it so the
	// classification step becomes a cache hit.
	info := matches
	entry.Info = &info
	c.cache.SetGame(key, entry)
	c.logger.Debug("resolved igdb id by slug",
		logging.String("key", key),
		logging.String("slug", slug),
		logging.Int64("igdb_id", entry.IGDBID))
	return true
}

// ResolveGameInfo fetches the classification payload (game modes) for key.
// Requires an id lookup to have run first. A known-absent game stores an
// empty payload without touching the network.
func (c *Client) ResolveGameInfo(ctx context.Context, key string) {
	entry, ok := c.cache.Game(key)
	if !ok {
		c.logger.Warn("info requested before id lookup", logging.String("key", key))
		return
	}
	if entry.InfoSet() && !(c.refresh && len(*entry.Info) == 0) {
		return
	}

	if entry.IGDBID == 0 {
		// Confirmed absent; never query another endpoint for it.
		empty := []igdbcache.GameInfo{}
		entry.Info = &empty
		c.cache.SetGame(key, entry)
		return
	}

	body := fmt.Sprintf("fields id,name,slug,game_modes; where id = %d;", entry.IGDBID)
	data, ok := c.apiRequest(ctx, "/games", body)
	if !ok {
		return
	}

	var info []igdbcache.GameInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.Error("parse games response",
			logging.String("key", key), logging.Error(err))
		return
	}

	entry.Info = &info
	c.cache.SetGame(key, entry)
}

// ResolveMultiplayerInfo fetches the per-platform multiplayer breakdowns for
// key and derives MaxPlayers. IGDB's breakdowns disagree between platforms,
// so the contract is the max across every reported value, never a single
// platform's figure.
func (c *Client) ResolveMultiplayerInfo(ctx context.Context, key string) {
	entry, ok := c.cache.Game(key)
	if !ok {
		c.logger.Warn("multiplayer info requested before id lookup", logging.String("key", key))
		return
	}
	if entry.MultiplayerSet() && !(c.refresh && len(*entry.Multiplayer) == 0) {
		return
	}

	if entry.IGDBID == 0 {
		empty := []igdbcache.MultiplayerMode{}
		entry.Multiplayer = &empty
		c.cache.SetGame(key, entry)
		return
	}

	body := fmt.Sprintf("fields *; where game = %d;", entry.IGDBID)
	data, ok := c.apiRequest(ctx, "/multiplayer_modes", body)
	if !ok {
		return
	}

	var modes []igdbcache.MultiplayerMode
	if err := json.Unmarshal(data, &modes); err != nil {
		c.logger.Error("parse multiplayer_modes response",
			logging.String("key", key), logging.Error(err))
		return
	}

	maxPlayers := 0
	for _, mode := range modes {
		for _, v := range []int{mode.OfflineCoopMax, mode.OfflineMax, mode.OnlineCoopMax, mode.OnlineMax} {
			if v > maxPlayers {
				maxPlayers = v
			}
		}
	}

	entry.Multiplayer = &modes
	entry.MaxPlayers = maxPlayers
	c.cache.SetGame(key, entry)
	c.logger.Debug("resolved multiplayer info",
		logging.String("key", key), logging.Int("max_players", maxPlayers))
}
