package kv

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryTable is an in-process Table. Items are copied on the way in and out
// so callers never share state with the table.
type MemoryTable struct {
	name  string
	mu    sync.RWMutex
	items map[string]Item
}

// NewMemoryTable creates an empty in-memory table.
func NewMemoryTable(name string) *MemoryTable {
	return &MemoryTable{
		name:  name,
		items: make(map[string]Item),
	}
}

// Name returns the table name.
func (m *MemoryTable) Name() string {
	return m.name
}

// GetItem returns a copy of the item under key.
func (m *MemoryTable) GetItem(ctx context.Context, key string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	return cloneItem(item), nil
}

// PutItem replaces the item under key.
func (m *MemoryTable) PutItem(ctx context.Context, key string, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = cloneItem(item)
	return nil
}

// UpdateItem overwrites one attribute, creating the item when absent.
func (m *MemoryTable) UpdateItem(ctx context.Context, key, attr string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		item = make(Item)
		m.items[key] = item
	}
	item[attr] = append(json.RawMessage(nil), value...)
	return nil
}

// Len returns the number of stored items.
func (m *MemoryTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Ping always succeeds; it lets the memory backend satisfy readiness checks.
func (m *MemoryTable) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
