package store

import (
	"context"
	"database/sql"
	"os"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
	// path is removed on Close when the store owns its file.
	path string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps writes serialized and temp tables visible.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// NewTemp creates a migrated store in a fresh file under dir (the system temp
// dir when empty). The file and its WAL companions are deleted on Close.
func NewTemp(ctx context.Context, dir string) (*SQLiteStore, error) {
	f, err := os.CreateTemp(dir, "note-leads-groups-*.db")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create temp file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return nil, eris.Wrap(err, "sqlite: close temp file")
	}

	s, err := NewSQLite(path)
	if err != nil {
		os.Remove(path) //nolint:errcheck
		return nil, err
	}
	s.path = path
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS groups (
	seq  INTEGER PRIMARY KEY AUTOINCREMENT,
	key  TEXT NOT NULL UNIQUE,
	data BLOB NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database and removes the backing file of a temp store.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if s.path != "" {
		for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
			if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
				err = rmErr
			}
		}
	}
	return eris.Wrap(err, "sqlite: close")
}

// GetGroup returns the stored data for key, or nil when key is unknown.
func (s *SQLiteStore) GetGroup(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM groups WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get group %s", key)
	}
	return data, nil
}

// PutGroup inserts or replaces the data for key. A replaced key keeps its
// original position.
func (s *SQLiteStore) PutGroup(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data,
	)
	return eris.Wrapf(err, "sqlite: put group %s", key)
}

// EachGroup calls fn for every group in first-stored order and stops at the
// first error fn returns.
func (s *SQLiteStore) EachGroup(ctx context.Context, fn func(key string, data []byte) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, data FROM groups ORDER BY seq`)
	if err != nil {
		return eris.Wrap(err, "sqlite: list groups")
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return eris.Wrap(err, "sqlite: scan group")
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	return eris.Wrap(rows.Err(), "sqlite: list groups iterate")
}

func (s *SQLiteStore) CountGroups(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count groups")
}

var _ Store = (*SQLiteStore)(nil)
