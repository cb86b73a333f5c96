// Package kv defines the single-table key-value contract the stores are built on.
// Every entity type lives in its own table, addressed by primary key only.
// Tables support single-item get, put and single-attribute update; there are
// no multi-item transactions and no conditional writes.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when no item exists for a key.
var ErrItemNotFound = errors.New("item not found")

// Item is a stored document: attribute name to JSON-encoded value.
type Item map[string]json.RawMessage

// Table is a key-value table holding one entity type.
type Table interface {
	// Name returns the table name.
	Name() string

	// GetItem returns the item stored under key, or ErrItemNotFound.
	GetItem(ctx context.Context, key string) (Item, error)

	// PutItem replaces the whole item stored under key.
	PutItem(ctx context.Context, key string, item Item) error

	// UpdateItem overwrites a single attribute of the item under key,
	// creating the item if it does not exist.
	UpdateItem(ctx context.Context, key, attr string, value json.RawMessage) error
}

// Encode converts a JSON-serializable document into an Item.
func Encode(v any) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}

	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("item is not a document: %w", err)
	}

	return item, nil
}

// Decode converts an Item into the document pointed to by v.
func Decode(item Item, v any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}

	return nil
}

// Load fetches the item under key and decodes it into v.
func Load(ctx context.Context, t Table, key string, v any) error {
	item, err := t.GetItem(ctx, key)
	if err != nil {
		return err
	}
	return Decode(item, v)
}

// Store encodes v and writes it as the whole item under key.
func Store(ctx context.Context, t Table, key string, v any) error {
	item, err := Encode(v)
	if err != nil {
		return err
	}
	return t.PutItem(ctx, key, item)
}

// Set encodes value and overwrites a single attribute of the item under key.
func Set(ctx context.Context, t Table, key, attr string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", attr, err)
	}
	return t.UpdateItem(ctx, key, attr, data)
}
