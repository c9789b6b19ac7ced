package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kbrowse/internal/logging"
)

// fileFormatVersion is written into every store file
const fileFormatVersion = 1

// FileStore data structure, items are kept as a list so storage order survives a reload
type fileData struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// FileStore implements Store interface using a JSON file for storage
type FileStore struct {
	filename string
	items    *itemSet
	isDirty  bool
	now      func() time.Time
	logger   *logging.Logger
	mu       sync.RWMutex
}

// NewFileStore creates new file-based knowledge store
func NewFileStore(filename string) (*FileStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for knowledge file: %w", err)
		}
	}

	store := &FileStore{
		filename: filename,
		now:      time.Now,
		logger:   logging.Get(),
	}
	return store, nil
}

// Open loads the knowledge store from file
func (f *FileStore) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = newItemSet()
	f.isDirty = false

	// File doesn't exist yet, start with an empty store
	if _, err := os.Stat(f.filename); os.IsNotExist(err) {
		f.logger.Debug("Knowledge file not found, starting empty", "file", f.filename)
		return nil
	}

	data, err := os.ReadFile(f.filename)
	if err != nil {
		return fmt.Errorf("failed to read knowledge file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("failed to parse knowledge file: %w", err)
	}
	if fd.Version > fileFormatVersion {
		return fmt.Errorf("unsupported knowledge file version %d", fd.Version)
	}

	for _, item := range fd.Items {
		if err := f.items.add(item, f.now()); err != nil {
			return fmt.Errorf("failed to load knowledge file: %w", err)
		}
	}

	f.logger.Debug("Knowledge file loaded", "file", f.filename, "items", len(fd.Items))
	return nil
}

// Close flushes data to disk and releases resources
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isDirty {
		if err := f.flush(); err != nil {
			return err
		}
	}

	f.items = nil
	return nil
}

// Flush writes current data to disk if needed
func (f *FileStore) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isDirty {
		return f.flush()
	}
	return nil
}

// internal flush method (must be called with lock held)
func (f *FileStore) flush() error {
	fd := fileData{
		Version: fileFormatVersion,
		Items:   f.items.all(),
	}

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge data: %w", err)
	}

	// Write to temp file, then rename over the real one
	tempFile := f.filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write knowledge data to temp file: %w", err)
	}
	if err := os.Rename(tempFile, f.filename); err != nil {
		return fmt.Errorf("failed to save knowledge file: %w", err)
	}

	f.isDirty = false
	f.logger.Debug("Knowledge file flushed", "file", f.filename, "items", len(fd.Items))
	return nil
}

// mutate runs fn under the write lock and marks the store dirty on success
func (f *FileStore) mutate(fn func(s *itemSet) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.items == nil {
		return ErrStoreClosed
	}
	if err := fn(f.items); err != nil {
		return err
	}
	f.isDirty = true
	return nil
}

// AddItem adds a new knowledge item
func (f *FileStore) AddItem(item Item) error {
	return f.mutate(func(s *itemSet) error {
		return s.add(item, f.now())
	})
}

// GetItem retrieves a knowledge item by ID
func (f *FileStore) GetItem(id string) (Item, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.items == nil {
		return Item{}, ErrStoreClosed
	}
	if item, exists := f.items.get(id); exists {
		return item.Clone(), nil
	}
	return Item{}, fmt.Errorf("knowledge item with ID %s: %w", id, ErrItemNotFound)
}

// UpdateItem updates an existing knowledge item
func (f *FileStore) UpdateItem(item Item) error {
	return f.mutate(func(s *itemSet) error {
		return s.update(item, f.now())
	})
}

// ArchiveItem marks an item as archived (soft delete)
func (f *FileStore) ArchiveItem(id string, at time.Time) error {
	return f.mutate(func(s *itemSet) error {
		return s.modify(id, archive(at))
	})
}

// RestoreItem brings an archived item back
func (f *FileStore) RestoreItem(id string) error {
	return f.mutate(func(s *itemSet) error {
		return s.modify(id, restore)
	})
}

// PurgeItem permanently deletes an item
func (f *FileStore) PurgeItem(id string) error {
	return f.mutate(func(s *itemSet) error {
		return s.remove(id)
	})
}

// SetFavorite adds or removes an item from the favorites collection
func (f *FileStore) SetFavorite(id string, on bool) error {
	return f.mutate(func(s *itemSet) error {
		return s.modify(id, favorite(on))
	})
}

// TouchItem records a visit to an item, a zero time forgets it
func (f *FileStore) TouchItem(id string, at time.Time) error {
	return f.mutate(func(s *itemSet) error {
		return s.modify(id, touch(at))
	})
}

// ClearVisits forgets every recorded visit
func (f *FileStore) ClearVisits() error {
	return f.mutate(func(s *itemSet) error {
		s.clearVisits()
		return nil
	})
}

// LoadItems loads multiple items into the store
// If an item with the same ID exists, it's updated; otherwise, it's added
func (f *FileStore) LoadItems(items ...Item) error {
	if len(items) == 0 {
		return nil
	}
	return f.mutate(func(s *itemSet) error {
		return s.load(items, f.now())
	})
}

// ListItems returns the items of a collection in storage order
func (f *FileStore) ListItems(collection Collection) ([]Item, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.items == nil {
		return nil, ErrStoreClosed
	}
	return f.items.list(collection)
}

// Info provides implementation-specific information about the file store
func (f *FileStore) Info() (map[string]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info := make(map[string]string)
	info["implementation"] = "FileStore"
	info["file_path"] = f.filename
	info["file_name"] = filepath.Base(f.filename)
	info["persistent"] = "true"
	info["is_dirty"] = fmt.Sprintf("%t", f.isDirty)
	if f.items != nil {
		info["item_count"] = fmt.Sprintf("%d", f.items.len())
	}
	return info, nil
}
