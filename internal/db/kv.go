package db

import (
	"context"
	"database/sql"
	"errors"
)

// Get returns the value stored under key, or ErrKeyNotFound.
func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM kv_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, Wrap(OpQuery, "kv_cache get", err)
	}
	return value, nil
}

// IncrBy atomically adds delta to the integer stored under key, creating
// the key at delta when absent. The value is kept as decimal text.
func (d *DB) IncrBy(ctx context.Context, key string, delta int64) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO kv_cache (key, value) VALUES (?, CAST(? AS TEXT))
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + ? AS TEXT)`,
		key, delta, delta)
	return Wrap(OpExec, "kv_cache incrby", err)
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO kv_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return Wrap(OpExec, "kv_cache set", err)
}
