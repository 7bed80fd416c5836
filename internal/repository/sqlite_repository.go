package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const upsertQuery = "INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"

type sqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("could not read %q: %w", key, err)
	}
	return value, nil
}

func (r *sqliteRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("could not scan setting: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (r *sqliteRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertQuery, key, value, r.now()); err != nil {
		return fmt.Errorf("could not write %q: %w", key, err)
	}
	return nil
}

func (r *sqliteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("could not delete %q: %w", key, err)
	}
	return nil
}
