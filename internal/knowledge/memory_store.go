package knowledge

import (
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store interface using in-memory storage
type MemoryStore struct {
	items *itemSet
	now   func() time.Time
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory knowledge store
func NewMemoryStore() (*MemoryStore, error) {
	store := &MemoryStore{
		items: newItemSet(),
		now:   time.Now,
	}
	return store, nil
}

// Open initializes the memory store
func (m *MemoryStore) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Ensure the set is initialized, also after Close
	if m.items == nil {
		m.items = newItemSet()
	}
	return nil
}

// Close releases resources (no-op for memory store)
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	return nil
}

// Flush persists data (no-op for memory store)
func (m *MemoryStore) Flush() error {
	return nil
}

// AddItem adds a new knowledge item
func (m *MemoryStore) AddItem(item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	return m.items.add(item, m.now())
}

// GetItem retrieves a knowledge item by ID
func (m *MemoryStore) GetItem(id string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.items == nil {
		return Item{}, ErrStoreClosed
	}
	if item, exists := m.items.get(id); exists {
		return item.Clone(), nil
	}
	return Item{}, fmt.Errorf("knowledge item with ID %s: %w", id, ErrItemNotFound)
}

// UpdateItem updates an existing knowledge item
func (m *MemoryStore) UpdateItem(item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	return m.items.update(item, m.now())
}

// ArchiveItem marks an item as archived (soft delete)
func (m *MemoryStore) ArchiveItem(id string, at time.Time) error {
	return m.modify(id, archive(at))
}

// RestoreItem brings an archived item back
func (m *MemoryStore) RestoreItem(id string) error {
	return m.modify(id, restore)
}

// SetFavorite adds or removes an item from the favorites collection
func (m *MemoryStore) SetFavorite(id string, on bool) error {
	return m.modify(id, favorite(on))
}

// TouchItem records a visit to an item, a zero time forgets it
func (m *MemoryStore) TouchItem(id string, at time.Time) error {
	return m.modify(id, touch(at))
}

func (m *MemoryStore) modify(id string, fn func(*Item) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	return m.items.modify(id, fn)
}

// PurgeItem permanently deletes an item
func (m *MemoryStore) PurgeItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	return m.items.remove(id)
}

// ClearVisits forgets every recorded visit
func (m *MemoryStore) ClearVisits() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	m.items.clearVisits()
	return nil
}

// ListItems returns the items of a collection in storage order
func (m *MemoryStore) ListItems(collection Collection) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.items == nil {
		return nil, ErrStoreClosed
	}
	return m.items.list(collection)
}

// LoadItems loads multiple items into the store
// If an item with the same ID exists, it's updated; otherwise, it's added
func (m *MemoryStore) LoadItems(items ...Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		return ErrStoreClosed
	}
	if len(items) == 0 {
		return nil
	}
	return m.items.load(items, m.now())
}

// Info provides implementation-specific information about the memory store
func (m *MemoryStore) Info() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info := make(map[string]string)
	info["implementation"] = "MemoryStore"
	info["persistent"] = "false"
	if m.items != nil {
		info["item_count"] = fmt.Sprintf("%d", m.items.len())
	}
	return info, nil
}
