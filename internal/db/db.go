// Package db owns the SQLite connection, schema bootstrap, and the generic
// key-value table. Repositories build on top of its *DB handle.
package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-sqlite3"
)

const vecDriverName = "sqlite3_with_vec"

var registerVecDriver sync.Once

// Config holds database settings.
type Config struct {
	// Path is the SQLite database file. Parent directories are created.
	Path string
	// VecExtensionPath, if set, is a loadable sqlite-vec extension that the
	// driver loads on every new connection. Load failures surface on first
	// use and are absorbed by the embedding repository's capability probe.
	VecExtensionPath string
}

// DB wraps the sql handle.
type DB struct {
	sql *sql.DB
}

// Open opens or creates the database, enables WAL and foreign keys, and
// bootstraps the base schema.
func Open(cfg Config) (*DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, Wrap(OpOpen, "db dir", err)
		}
	}

	driver := "sqlite3"
	if cfg.VecExtensionPath != "" {
		driver = vecDriverName
		ext := cfg.VecExtensionPath
		registerVecDriver.Do(func() {
			sql.Register(vecDriverName, &sqlite3.SQLiteDriver{
				Extensions: []string{ext},
			})
		})
	}

	handle, err := sql.Open(driver, cfg.Path)
	if err != nil {
		return nil, Wrap(OpOpen, "sqlite", err)
	}
	// SQLite allows one writer; a pool of connections only buys lock
	// contention for a single-binary tool.
	handle.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := handle.Exec(pragma); err != nil {
			_ = handle.Close()
			return nil, Wrap(OpExec, pragma, err)
		}
	}

	if err := initSchema(handle); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return &DB{sql: handle}, nil
}

// SQL exposes the raw handle to repositories.
func (d *DB) SQL() *sql.DB { return d.sql }

// Close closes the underlying handle.
func (d *DB) Close() error { return d.sql.Close() }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return Wrap(OpQuery, "ping", d.sql.PingContext(ctx))
}

func initSchema(handle *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS igdb_games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		igdb_id INTEGER NOT NULL UNIQUE,
		slug TEXT UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		summary TEXT,
		release_date TEXT,
		cover_url TEXT,
		checksum TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_igdb_games_release ON igdb_games(release_date);

	CREATE TABLE IF NOT EXISTS game_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL,
		tag_class TEXT NOT NULL DEFAULT '',
		igdb_id INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_game_tags_class_igdb ON game_tags(tag_class, igdb_id);

	CREATE TABLE IF NOT EXISTS game_tag_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL REFERENCES igdb_games(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES game_tags(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(game_id, tag_id)
	);
	CREATE INDEX IF NOT EXISTS idx_game_tag_links_game_id ON game_tag_links(game_id);

	CREATE TABLE IF NOT EXISTS user_favorite_games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL UNIQUE REFERENCES igdb_games(id) ON DELETE CASCADE,
		notes TEXT,
		added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS game_embeddings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL UNIQUE,
		dimension INTEGER NOT NULL,
		title_embedding BLOB NOT NULL,
		storyline_embedding BLOB NOT NULL,
		summary_embedding BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_game_embeddings_dimension ON game_embeddings(dimension);

	CREATE TABLE IF NOT EXISTS kv_cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := handle.Exec(schema); err != nil {
		return Wrap(OpExec, "init schema", err)
	}
	return nil
}
