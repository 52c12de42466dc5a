package igdbcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"gamatrix/internal/logging"
)

// namespace is the root-object key reserved for gamatrix.
const namespace = "igdb"

// GameInfo is one element of the raw IGDB /games payload we keep.
type GameInfo struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Slug      string `json:"slug,omitempty"`
	GameModes []int  `json:"game_modes,omitempty"`
}

// MultiplayerMode is one per-platform breakdown from /multiplayer_modes.
// IGDB reports these inconsistently between platforms; consumers must take
// the max across the whole list, never trust a single element.
type MultiplayerMode struct {
	ID             int64 `json:"id,omitempty"`
	Platform       int64 `json:"platform,omitempty"`
	OfflineCoopMax int   `json:"offlinecoopmax,omitempty"`
	OfflineMax     int   `json:"offlinemax,omitempty"`
	OnlineCoopMax  int   `json:"onlinecoopmax,omitempty"`
	OnlineMax      int   `json:"onlinemax,omitempty"`
}

// GameEntry is the cached metadata for one external lookup key.
//
// IGDBID zero means the id lookup ran and found nothing. Info and
// Multiplayer are nil until their lookups run; an empty non-nil slice means
// "fetched, nothing there", so the next run does not re-attempt.
type GameEntry struct {
	IGDBID      int64              `json:"igdb_id"`
	Info        *[]GameInfo        `json:"info,omitempty"`
	Multiplayer *[]MultiplayerMode `json:"multiplayer,omitempty"`
	MaxPlayers  int                `json:"max_players"`
}

// InfoSet reports whether the classification lookup has run for this entry.
func (e GameEntry) InfoSet() bool { return e.Info != nil }

// MultiplayerSet reports whether the multiplayer lookup has run.
func (e GameEntry) MultiplayerSet() bool { return e.Multiplayer != nil }

type region struct {
	AccessToken string                `json:"access_token,omitempty"`
	Games       map[string]*GameEntry `json:"games"`
}

// Document is the in-memory working copy of the cache file.
type Document struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock

	foreign map[string]json.RawMessage
	igdb    region
	dirty   bool
}

// Load reads the cache document at path, creating an empty one if the file
// does not exist (expected on first run). The document file is locked until
// Close is called.
func Load(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "igdbcache")

	d := &Document{
		path:    path,
		logger:  logger,
		foreign: make(map[string]json.RawMessage),
		igdb:    region{Games: make(map[string]*GameEntry)},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	d.lock = flock.New(path + ".lock")
	if err := d.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock cache file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("cache file not found, starting with an empty cache",
				logging.String("path", path))
			return d, nil
		}
		d.unlock()
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	if len(data) > 0 {
		if err := d.decode(data); err != nil {
			d.unlock()
			return nil, err
		}
	}

	logger.Debug("loaded cache",
		logging.Int("game_count", len(d.igdb.Games)),
		logging.String("path", path))

	return d, nil
}

func (d *Document) decode(data []byte) error {
	root := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	if raw, ok := root[namespace]; ok {
		if err := json.Unmarshal(raw, &d.igdb); err != nil {
			return fmt.Errorf("parse %s region: %w", namespace, err)
		}
		delete(root, namespace)
	}
	if d.igdb.Games == nil {
		d.igdb.Games = make(map[string]*GameEntry)
	}
	d.foreign = root
	return nil
}

// Game returns a copy of the cached entry for key. The second result is
// false when the key has never been looked up.
func (d *Document) Game(key string) (GameEntry, bool) {
	entry, ok := d.igdb.Games[key]
	if !ok {
		return GameEntry{}, false
	}
	return *entry, true
}

// SetGame stores entry under key and marks the document dirty.
func (d *Document) SetGame(key string, entry GameEntry) {
	d.igdb.Games[key] = &entry
	d.dirty = true
}

// GameCount returns the number of cached game entries.
func (d *Document) GameCount() int { return len(d.igdb.Games) }

// Keys returns every cached lookup key.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.igdb.Games))
	for k := range d.igdb.Games {
		keys = append(keys, k)
	}
	return keys
}

// AccessToken returns the persisted Twitch token, if any.
func (d *Document) AccessToken() string { return d.igdb.AccessToken }

// SetAccessToken replaces the persisted token and marks the document dirty.
func (d *Document) SetAccessToken(token string) {
	if d.igdb.AccessToken == token {
		return
	}
	d.igdb.AccessToken = token
	d.dirty = true
}

// Dirty reports whether the document has unsaved changes.
func (d *Document) Dirty() bool { return d.dirty }

// Save writes the document back to disk if it changed since Load. Values
// outside the igdb region are written back byte for byte.
func (d *Document) Save() error {
	if !d.dirty {
		d.logger.Debug("cache is clean, not saving")
		return nil
	}

	root := make(map[string]json.RawMessage, len(d.foreign)+1)
	for k, v := range d.foreign {
		root[k] = v
	}
	raw, err := json.Marshal(d.igdb)
	if err != nil {
		return fmt.Errorf("marshal %s region: %w", namespace, err)
	}
	root[namespace] = raw

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmpPath := d.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	d.dirty = false
	d.logger.Info("saved cache",
		logging.Int("game_count", len(d.igdb.Games)),
		logging.String("path", d.path))
	return nil
}

// Close releases the file lock. The document must not be used afterwards.
func (d *Document) Close() error {
	return d.unlock()
}

func (d *Document) unlock() error {
	if d.lock == nil {
		return nil
	}
	if err := d.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock cache file: %w", err)
	}
	d.lock = nil
	return nil
}
