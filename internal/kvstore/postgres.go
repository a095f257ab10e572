package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists entries in the kv_entries table (see migrations/).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv get: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM kv_entries WHERE key LIKE $1 || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("kv list: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("kv list scan: %w", err)
		}
		entries[k] = v
	}
	return entries, rows.Err()
}
