package save

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection holding the save blobs.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a save database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS save_blobs (
		save_key TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS save_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// WriteBlobs replaces all stored blobs in one transaction (full replace, so
// a key that stopped existing does not linger).
func (db *DB) WriteBlobs(blobs map[string][]byte, version int) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM save_blobs"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO save_blobs (save_key, version, data) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	var total int
	for key, data := range blobs {
		if _, err := stmt.Exec(key, version, data); err != nil {
			return fmt.Errorf("insert blob %q: %w", key, err)
		}
		total += len(data)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("save written", "blobs", len(blobs), "bytes", total)
	return nil
}

// ReadBlob fetches one blob by key.
func (db *DB) ReadBlob(key string) ([]byte, error) {
	var data []byte
	err := db.conn.Get(&data, "SELECT data FROM save_blobs WHERE save_key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}
	return data, nil
}

// HasSave reports whether the database contains any blobs.
func (db *DB) HasSave() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM save_blobs"); err != nil {
		return false
	}
	return n > 0
}

// SetMeta stores a key-value pair alongside the blobs.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO save_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM save_meta WHERE key = ?", key)
	return value, err
}
