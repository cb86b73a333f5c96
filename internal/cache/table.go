package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/scoreboard/scoreboard/internal/kv"
)

// tableKeySeparator joins table name and item key into a Redis key.
const tableKeySeparator = ":"

// Table is a kv.Table stored in Redis, one hash per item.
// Hash fields are attribute names; values are JSON.
type Table struct {
	client *redis.Client
	name   string
}

// Table returns the Redis-backed document table with the given name.
func (c *Cache) Table(name string) *Table {
	return &Table{client: c.client, name: name}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// GetItem retrieves the item stored under key.
func (t *Table) GetItem(ctx context.Context, key string) (kv.Item, error) {
	fields, err := t.client.HGetAll(ctx, t.redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(fields) == 0 {
		return nil, kv.ErrItemNotFound
	}

	item := make(kv.Item, len(fields))
	for attr, value := range fields {
		item[attr] = json.RawMessage(value)
	}

	return item, nil
}

// PutItem replaces the item under key atomically.
func (t *Table) PutItem(ctx context.Context, key string, item kv.Item) error {
	redisKey := t.redisKey(key)

	fields := make(map[string]any, len(item))
	for attr, value := range item {
		fields[attr] = string(value)
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, redisKey, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put item into %s: %w", t.name, err)
	}

	return nil
}

// UpdateItem overwrites one attribute of the item under key.
func (t *Table) UpdateItem(ctx context.Context, key, attr string, value json.RawMessage) error {
	if err := t.client.HSet(ctx, t.redisKey(key), attr, string(value)).Err(); err != nil {
		return fmt.Errorf("failed to update %s in %s: %w", attr, t.name, err)
	}
	return nil
}

func (t *Table) redisKey(key string) string {
	return t.name + tableKeySeparator + key
}
