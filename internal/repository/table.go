package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/scoreboard/scoreboard/internal/kv"
)

// Table is a kv.Table stored in Postgres as (key TEXT PRIMARY KEY, item JSONB).
type Table struct {
	pool  *pgxpool.Pool
	name  string
	ident string
}

func newTable(pool *pgxpool.Pool, name string) *Table {
	return &Table{
		pool:  pool,
		name:  name,
		ident: pq.QuoteIdentifier(name),
	}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// GetItem retrieves the document stored under key.
func (t *Table) GetItem(ctx context.Context, key string) (kv.Item, error) {
	query := fmt.Sprintf(`SELECT item::text FROM %s WHERE key = $1`, t.ident)

	var raw string
	err := t.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kv.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item from %s: %w", t.name, err)
	}

	var item kv.Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("failed to decode item from %s: %w", t.name, err)
	}

	return item, nil
}

// PutItem replaces the document stored under key.
func (t *Table) PutItem(ctx context.Context, key string, item kv.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode item for %s: %w", t.name, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (key, item, updated_at)
		VALUES ($1, $2::text::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET item = EXCLUDED.item, updated_at = EXCLUDED.updated_at
	`, t.ident)

	if _, err := t.pool.Exec(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("failed to put item into %s: %w", t.name, err)
	}

	return nil
}

// UpdateItem overwrites one top-level attribute of the document under key.
// A missing document is created holding just that attribute.
func (t *Table) UpdateItem(ctx context.Context, key, attr string, value json.RawMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (key, item, updated_at)
		VALUES ($1, jsonb_build_object($2::text, $3::text::jsonb), now())
		ON CONFLICT (key) DO UPDATE
		SET item = %[1]s.item || jsonb_build_object($2::text, $3::text::jsonb),
		    updated_at = now()
	`, t.ident)

	if _, err := t.pool.Exec(ctx, query, key, attr, string(value)); err != nil {
		return fmt.Errorf("failed to update %s in %s: %w", attr, t.name, err)
	}

	return nil
}
