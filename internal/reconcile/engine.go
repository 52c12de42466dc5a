package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gamatrix/internal/config"
	"gamatrix/internal/gogdb"
	"gamatrix/internal/igdb"
	"gamatrix/internal/igdbcache"
	"gamatrix/internal/logging"
	"gamatrix/internal/slug"
)

// Library is the view of one user's GOG Galaxy database the engine
// consumes. *gogdb.DB implements it.
type Library interface {
	UserID(ctx context.Context) (int64, error)
	OwnedTitles(ctx context.Context) ([]gogdb.OwnedTitle, error)
	InstalledReleaseKeys(ctx context.Context) ([]string, error)
	PreferredLookupKey(ctx context.Context, releaseKey string) (string, error)
}

// Metadata resolves IGDB metadata for release keys. *igdb.Client
// implements it. Resolution never fails a run: on lookup trouble the
// implementation leaves the cache alone and the title stays unclassified.
type Metadata interface {
	ResolveGameID(ctx context.Context, key string) bool
	ResolveGameIDBySlug(ctx context.Context, key, slug string) bool
	ResolveGameInfo(ctx context.Context, key string)
	ResolveMultiplayerInfo(ctx context.Context, key string)
	Game(key string) (igdbcache.GameEntry, bool)
}

// Result is the outcome of one comparison.
type Result struct {
	Games   []*Game `json:"games"`
	Caption string  `json:"caption"`
}

// Engine runs comparisons against a fixed config. A single engine handles
// any number of requests; per-request state lives in Options.
type Engine struct {
	cfg    *config.Config
	meta   Metadata
	logger *slog.Logger
}

// New returns an engine. meta may be nil, in which case titles classify
// from config overrides alone and everything else stays unclassified.
func New(cfg *config.Config, meta Metadata, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		meta:   meta,
		logger: logging.WithComponent(logger, "reconcile"),
	}
}

// Run executes the full pipeline over the given libraries: ingest, sort,
// merge, classify, filter, caption. The caller opens one Library per user
// in the comparison (every configured user when opts.Exclusive is set).
func (e *Engine) Run(ctx context.Context, opts Options, libs []Library) (*Result, error) {
	if len(opts.UserIDs) == 0 {
		return nil, fmt.Errorf("no users to compare")
	}

	games, err := e.ingest(ctx, opts, libs)
	if err != nil {
		return nil, err
	}

	sortEntries(games)
	games = mergeAdjacent(games)
	e.classify(ctx, games)
	games = e.filter(opts, games)

	e.logger.Info("comparison complete",
		logging.Int("game_count", len(games)),
		logging.Int("user_count", len(opts.UserIDs)))

	return &Result{
		Games:   games,
		Caption: e.caption(opts, len(games)),
	}, nil
}

// excludedUserIDs returns the configured users outside the comparison.
// Only meaningful for exclusive mode.
func (e *Engine) excludedUserIDs(opts Options) []int64 {
	var excluded []int64
	for _, u := range e.cfg.Users {
		if !opts.comparesUser(u.ID) {
			excluded = append(excluded, u.ID)
		}
	}
	sortIDs(excluded)
	return excluded
}

// ingest reads every library into per-release-key entries and accumulates
// ownership. First sighting of a key fixes its title, slug, lookup key,
// and any configured override; later sightings only add owners.
func (e *Engine) ingest(ctx context.Context, opts Options, libs []Library) ([]*Game, error) {
	hidden := make(map[string]bool, len(e.cfg.Hidden))
	for _, s := range e.cfg.Hidden {
		hidden[s] = true
	}

	byKey := make(map[string]*Game)
	var order []*Game

	for _, lib := range libs {
		userID, err := lib.UserID(ctx)
		if err != nil {
			return nil, err
		}

		installedKeys, err := lib.InstalledReleaseKeys(ctx)
		if err != nil {
			return nil, err
		}
		installed := make(map[string]bool, len(installedKeys))
		for _, k := range installedKeys {
			installed[k] = true
		}

		owned, err := lib.OwnedTitles(ctx)
		if err != nil {
			return nil, err
		}

		for _, row := range owned {
			for _, key := range strings.Split(row.ReleaseKeys, ",") {
				platform, _, found := strings.Cut(key, "_")
				if !found {
					e.logger.Warn("release key has no platform prefix",
						logging.String("key", key), logging.Int64("user_id", userID))
					continue
				}
				if opts.excludesPlatform(platform) {
					continue
				}

				game, ok := byKey[key]
				if !ok {
					title, ok := row.Title()
					if !ok {
						e.logger.Debug("skipping release key with no title",
							logging.String("key", key))
						continue
					}
					gameSlug := slug.Make(title)
					if hidden[gameSlug] {
						e.logger.Debug("skipping hidden title",
							logging.String("title", title))
						continue
					}

					lookupKey, err := lib.PreferredLookupKey(ctx, key)
					if err != nil {
						return nil, err
					}

					game = &Game{
						ReleaseKey: key,
						Title:      title,
						Slug:       gameSlug,
						IGDBKey:    lookupKey,
						Platforms:  []string{platform},
					}
					if override, ok := e.cfg.Metadata[gameSlug]; ok {
						if override.MaxPlayers > 0 {
							game.MaxPlayers = override.MaxPlayers
							game.fromConfig = true
						}
						game.Comment = override.Comment
					}
					byKey[key] = game
					order = append(order, game)
				}

				game.addOwner(userID)
				if installed[key] {
					game.addInstalled(userID)
				}
			}
		}
	}

	for _, g := range order {
		sortIDs(g.Owners)
		sortIDs(g.Installed)
	}
	return order, nil
}

// sortEntries orders entries by (slug, platform preference) so duplicates
// of the same title are adjacent, best-resolving storefront first.
func sortEntries(games []*Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Slug != games[j].Slug {
			return games[i].Slug < games[j].Slug
		}
		return platformRank(games[i].Platform()) < platformRank(games[j].Platform())
	})
}

// mergeAdjacent collapses adjacent entries that share a slug and an
// identical owner set. The surviving entry keeps its identity (title,
// release key, lookup key) and absorbs the other's platforms, installs,
// and, when higher, max players. Same slug with different owners is two
// distinct results on purpose.
func mergeAdjacent(games []*Game) []*Game {
	var out []*Game
	for _, g := range games {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Slug == g.Slug && sameOwners(last.Owners, g.Owners) {
				mergeInto(last, g)
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func mergeInto(dst, src *Game) {
	for _, p := range src.Platforms {
		found := false
		for _, existing := range dst.Platforms {
			if existing == p {
				found = true
				break
			}
		}
		if !found {
			dst.Platforms = append(dst.Platforms, p)
		}
	}
	sort.Strings(dst.Platforms)

	for _, uid := range src.Installed {
		dst.addInstalled(uid)
	}
	sortIDs(dst.Installed)

	if src.MaxPlayers > dst.MaxPlayers {
		dst.MaxPlayers = src.MaxPlayers
	}
	if src.fromConfig {
		dst.fromConfig = true
	}
	if dst.Comment == "" {
		dst.Comment = src.Comment
	}
}

// classify resolves player counts for the merge survivors. Configured
// overrides win outright; otherwise IGDB data decides, and a title with
// neither is marked unclassified rather than guessed at.
func (e *Engine) classify(ctx context.Context, games []*Game) {
	for _, g := range games {
		if g.fromConfig {
			g.Multiplayer = g.MaxPlayers > 1
			continue
		}
		if e.meta == nil {
			g.Unclassified = true
			continue
		}

		if !e.meta.ResolveGameID(ctx, g.IGDBKey) {
			e.meta.ResolveGameIDBySlug(ctx, g.IGDBKey, g.Slug)
		}
		e.meta.ResolveGameInfo(ctx, g.IGDBKey)
		e.meta.ResolveMultiplayerInfo(ctx, g.IGDBKey)

		entry, ok := e.meta.Game(g.IGDBKey)
		if !ok {
			g.Unclassified = true
			continue
		}

		var modes []int
		if entry.InfoSet() && len(*entry.Info) > 0 {
			modes = (*entry.Info)[0].GameModes
		}

		if entry.MaxPlayers > 0 {
			g.MaxPlayers = entry.MaxPlayers
		} else if len(modes) == 1 && modes[0] == igdb.GameModeSinglePlayer {
			// The only reported mode is single-player; that pins the count.
			g.MaxPlayers = 1
		}

		for _, mode := range modes {
			if igdb.IsMultiplayerGameMode(mode) {
				g.Multiplayer = true
				break
			}
		}
		if g.MaxPlayers > 1 {
			g.Multiplayer = true
		}

		g.Unclassified = g.MaxPlayers == 0 && len(modes) == 0
	}
}

// filter applies the request's ownership and classification filters.
func (e *Engine) filter(opts Options, games []*Game) []*Game {
	excluded := e.excludedUserIDs(opts)

	var out []*Game
	for _, g := range games {
		if !opts.IncludeSinglePlayer && !g.Multiplayer {
			if !(opts.KeepUnclassified && g.Unclassified) {
				continue
			}
		}
		if !opts.AllGames {
			if !e.passesOwnership(opts, excluded, g) {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func (e *Engine) passesOwnership(opts Options, excluded []int64, g *Game) bool {
	for _, uid := range opts.UserIDs {
		if !g.OwnedBy(uid) {
			return false
		}
		if opts.InstalledOnly && !g.InstalledBy(uid) {
			return false
		}
	}
	if opts.Exclusive {
		for _, uid := range excluded {
			if g.OwnedBy(uid) {
				return false
			}
		}
	}
	return true
}
