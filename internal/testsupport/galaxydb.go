package testsupport

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// GalaxyGame describes one owned title to place in a fixture database.
type GalaxyGame struct {
	// ReleaseKeys lists every storefront key for the title, e.g.
	// {"steam_100", "gog_200"}. They end up as one comma-joined row.
	ReleaseKeys []string
	Title       string
	// NullTitle stores {"title": null}, mimicking storefront entries with
	// missing data.
	NullTitle bool
	// Releases overrides the allGameReleases list; defaults to ReleaseKeys.
	Releases []string
	// Installed marks every release key of this game as installed.
	Installed bool
}

// WriteGalaxyDB creates a GOG Galaxy-shaped sqlite database at path.
func WriteGalaxyDB(t testing.TB, path string, userID int64, games []GalaxyGame) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE Users (id INTEGER)`,
		`CREATE TABLE GamePieceTypes (id INTEGER PRIMARY KEY, type TEXT)`,
		`CREATE TABLE GamePieces (releaseKey TEXT, gamePieceTypeId INTEGER, value TEXT)`,
		`CREATE TABLE ProductPurchaseDates (gameReleaseKey TEXT)`,
		`CREATE TABLE Platforms (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE InstalledExternalProducts (productId TEXT, platformId INTEGER)`,
		`CREATE TABLE InstalledProducts (productId TEXT)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create fixture schema: %v", err)
		}
	}

	mustExec(t, db, `INSERT INTO GamePieceTypes (id, type) VALUES (1, 'originalTitle'), (2, 'title'), (3, 'allGameReleases')`)
	if userID != 0 {
		mustExec(t, db, `INSERT INTO Users (id) VALUES (?)`, userID)
	}

	platformIDs := map[string]int64{}
	nextPlatformID := int64(1)

	for _, game := range games {
		titleJSON := fmt.Sprintf(`{"title":%q}`, game.Title)
		if game.NullTitle {
			titleJSON = `{"title":null}`
		}

		releases := game.Releases
		if releases == nil {
			releases = game.ReleaseKeys
		}
		releasesValue, err := json.Marshal(map[string][]string{"releases": releases})
		if err != nil {
			t.Fatalf("marshal releases: %v", err)
		}

		for _, key := range game.ReleaseKeys {
			mustExec(t, db, `INSERT INTO ProductPurchaseDates (gameReleaseKey) VALUES (?)`, key)
			mustExec(t, db, `INSERT INTO GamePieces (releaseKey, gamePieceTypeId, value) VALUES (?, 1, ?)`, key, titleJSON)
			mustExec(t, db, `INSERT INTO GamePieces (releaseKey, gamePieceTypeId, value) VALUES (?, 2, ?)`, key, titleJSON)
			mustExec(t, db, `INSERT INTO GamePieces (releaseKey, gamePieceTypeId, value) VALUES (?, 3, ?)`, key, string(releasesValue))

			if !game.Installed {
				continue
			}
			platform, productID, found := strings.Cut(key, "_")
			if !found {
				t.Fatalf("release key %q has no platform prefix", key)
			}
			if platform == "gog" {
				mustExec(t, db, `INSERT INTO InstalledProducts (productId) VALUES (?)`, productID)
				continue
			}
			pid, ok := platformIDs[platform]
			if !ok {
				pid = nextPlatformID
				nextPlatformID++
				platformIDs[platform] = pid
				mustExec(t, db, `INSERT INTO Platforms (id, name) VALUES (?, ?)`, pid, platform)
			}
			mustExec(t, db, `INSERT INTO InstalledExternalProducts (productId, platformId) VALUES (?, ?)`, productID, pid)
		}
	}
}

func mustExec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("fixture exec %q: %v", query, err)
	}
}
