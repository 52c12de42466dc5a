package gogdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gamatrix/internal/logging"
)

// OwnedTitle is one raw row from the owned-games query: every release key
// for a title the user owns (comma-joined when owned on several
// storefronts), plus the title as a JSON object like {"title": "Doom"}.
type OwnedTitle struct {
	ReleaseKeys string
	TitleJSON   string
}

// Title unwraps the JSON payload. Missing titles happen in real databases
// (some Epic entries carry no data) and come back as ok=false.
func (t OwnedTitle) Title() (string, bool) {
	var payload struct {
		Title *string `json:"title"`
	}
	if err := json.Unmarshal([]byte(t.TitleJSON), &payload); err != nil || payload.Title == nil {
		return "", false
	}
	return *payload.Title, true
}

// OwnedTitles returns one row per owned title. Adapted from
// https://github.com/AB1908/GOG-Galaxy-Export-Script/blob/master/galaxy_library_export.py
func (d *DB) OwnedTitles(ctx context.Context) ([]OwnedTitle, error) {
	originalTitleID, err := d.gamePieceTypeID(ctx, "originalTitle")
	if err != nil {
		return nil, err
	}
	titleID, err := d.gamePieceTypeID(ctx, "title")
	if err != nil {
		return nil, err
	}
	releasesID, err := d.gamePieceTypeID(ctx, "allGameReleases")
	if err != nil {
		return nil, err
	}

	setup := []string{
		`CREATE TEMP VIEW IF NOT EXISTS MasterList AS
			SELECT GamePieces.releaseKey, GamePieces.gamePieceTypeId, GamePieces.value
			FROM ProductPurchaseDates
			JOIN GamePieces ON ProductPurchaseDates.gameReleaseKey = GamePieces.releaseKey`,
		fmt.Sprintf(`CREATE TEMP VIEW IF NOT EXISTS MasterDB AS
			SELECT DISTINCT(MasterList.releaseKey) AS releaseKey,
				MasterList.value AS title,
				PLATFORMS.value AS platformList
			FROM MasterList, MasterList AS PLATFORMS
			WHERE ((MasterList.gamePieceTypeId = %d) OR (MasterList.gamePieceTypeId = %d))
				AND ((PLATFORMS.releaseKey = MasterList.releaseKey)
					AND (PLATFORMS.gamePieceTypeId = %d))
			ORDER BY title`, originalTitleID, titleID, releasesID),
	}
	for _, stmt := range setup {
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create temp view: %w", err)
		}
	}

	query := `SELECT GROUP_CONCAT(DISTINCT MasterDB.releaseKey), MasterDB.title
		FROM MasterDB GROUP BY MasterDB.platformList ORDER BY MasterDB.title`
	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query owned titles: %w", err)
	}
	defer rows.Close()

	var owned []OwnedTitle
	for rows.Next() {
		var row OwnedTitle
		if err := rows.Scan(&row.ReleaseKeys, &row.TitleJSON); err != nil {
			return nil, fmt.Errorf("scan owned title: %w", err)
		}
		owned = append(owned, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read owned titles: %w", err)
	}

	d.logger.Debug("read owned titles",
		logging.String("db", d.path),
		logging.Int("row_count", len(owned)))
	return owned, nil
}

// InstalledReleaseKeys returns the release keys installed on the user's
// machine, covering both external storefronts and GOG's own installer.
// https://www.reddit.com/r/gog/comments/ek3vtz/
func (d *DB) InstalledReleaseKeys(ctx context.Context) ([]string, error) {
	query := `SELECT trim(GamePieces.releaseKey) FROM GamePieces
		JOIN GamePieceTypes ON GamePieces.gamePieceTypeId = GamePieceTypes.id
		WHERE releaseKey IN
			(SELECT Platforms.name || '_' || InstalledExternalProducts.productId
				FROM InstalledExternalProducts
				JOIN Platforms ON InstalledExternalProducts.platformId = Platforms.id
			UNION
			SELECT 'gog_' || productId FROM InstalledProducts)
		AND GamePieceTypes.type = 'originalTitle'`

	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query installed titles: %w", err)
	}
	defer rows.Close()

	var installed []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan installed key: %w", err)
		}
		installed = append(installed, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read installed titles: %w", err)
	}
	return installed, nil
}

// PreferredLookupKey picks the release key to send to IGDB for releaseKey.
// Steam keys resolve reliably, GOG keys about half the time, other
// storefronts never; so the order of preference is Steam, then GOG, then
// the key itself. Steam keys are returned verbatim without a query.
func (d *DB) PreferredLookupKey(ctx context.Context, releaseKey string) (string, error) {
	if strings.HasPrefix(releaseKey, "steam_") {
		return releaseKey, nil
	}

	releasesID, err := d.gamePieceTypeID(ctx, "allGameReleases")
	if err != nil {
		return "", err
	}

	var value string
	err = d.conn.QueryRowContext(ctx,
		"SELECT value FROM GamePieces WHERE releaseKey = ? AND gamePieceTypeId = ?",
		releaseKey, releasesID).Scan(&value)
	if err != nil {
		d.logger.Debug("no release list for key, keeping it",
			logging.String("key", releaseKey), logging.Error(err))
		return releaseKey, nil
	}

	var payload struct {
		Releases []string `json:"releases"`
	}
	if err := json.Unmarshal([]byte(value), &payload); err != nil || len(payload.Releases) == 0 {
		return releaseKey, nil
	}

	// Sometimes there's a steam_1234 and a steam_steam_1234, always in
	// that order; the doubled key never resolves.
	for _, k := range payload.Releases {
		if strings.HasPrefix(k, "steam_") && !strings.HasPrefix(k, "steam_steam_") {
			return k, nil
		}
	}
	for _, k := range payload.Releases {
		if strings.HasPrefix(k, "gog_") {
			return k, nil
		}
	}
	return releaseKey, nil
}
