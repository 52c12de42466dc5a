package gogdb

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"gamatrix/internal/logging"
)

// ErrNoUsers is returned when the Users table of an otherwise valid
// database holds no rows. A silently skipped user would corrupt the
// comparison, so callers must treat this as fatal for that database.
var ErrNoUsers = errors.New("no users found in the Users table")

// sqliteMagic is the sqlite3 file header.
// https://www.sqlite.org/fileformat.html
var sqliteMagic = []byte("SQLite format 3\x00")

// IsSQLite reports whether the stream starts with an SQLite3 DB header.
func IsSQLite(stream []byte) bool {
	return len(stream) >= len(sqliteMagic) && bytes.Equal(stream[:len(sqliteMagic)], sqliteMagic)
}

// DB reads one user's GOG Galaxy database.
type DB struct {
	path   string
	db     *sql.DB
	conn   *sql.Conn
	logger *slog.Logger
}

// Open connects to the database at path. A missing file is an error: the
// comparison cannot silently omit a configured user.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "gogdb")

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("galaxy db %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open galaxy db: %w", err)
	}

	// Temp views are connection-scoped, so pin one connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	return &DB{path: path, db: db, conn: conn, logger: logger}, nil
}

// Close releases the pinned connection and the database handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// UserID returns the GOG user id stored in the database. Zero rows is an
// error; multiple rows logs a warning and uses the first.
func (d *DB) UserID(ctx context.Context) (int64, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT id FROM Users")
	if err != nil {
		return 0, fmt.Errorf("query Users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read Users: %w", err)
	}

	if len(ids) == 0 {
		return 0, fmt.Errorf("%s: %w", d.path, ErrNoUsers)
	}
	if len(ids) > 1 {
		d.logger.Warn("multiple users in db, using the first",
			logging.String("db", d.path),
			logging.Int64("user_id", ids[0]),
			logging.Int("user_count", len(ids)))
	}
	return ids[0], nil
}

// gamePieceTypeID returns the numeric id for a GamePieceTypes name.
func (d *DB) gamePieceTypeID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := d.conn.QueryRowContext(ctx,
		"SELECT id FROM GamePieceTypes WHERE type = ?", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("game piece type %q: %w", name, err)
	}
	return id, nil
}
