package knowledge

import (
	"errors"
	"fmt"
	"time"
)

// itemSet keeps items by ID while remembering insertion order.
// Callers hold the owning store's lock.
type itemSet struct {
	items map[string]Item
	order []string
}

func newItemSet() *itemSet {
	return &itemSet{items: make(map[string]Item)}
}

func (s *itemSet) len() int {
	return len(s.order)
}

func (s *itemSet) get(id string) (Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

func (s *itemSet) add(item Item, now time.Time) error {
	if item.ID == "" {
		return errors.New("knowledge item must have an ID")
	}
	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("knowledge item with ID %s: %w", item.ID, ErrItemExists)
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	s.items[item.ID] = item.Clone()
	s.order = append(s.order, item.ID)
	return nil
}

func (s *itemSet) update(item Item, now time.Time) error {
	if _, exists := s.items[item.ID]; !exists {
		return fmt.Errorf("knowledge item with ID %s: %w", item.ID, ErrItemNotFound)
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	s.items[item.ID] = item.Clone()
	return nil
}

// modify applies fn to the stored item with the given ID
func (s *itemSet) modify(id string, fn func(*Item) error) error {
	item, exists := s.items[id]
	if !exists {
		return fmt.Errorf("knowledge item with ID %s: %w", id, ErrItemNotFound)
	}
	if err := fn(&item); err != nil {
		return err
	}
	s.items[id] = item
	return nil
}

func (s *itemSet) remove(id string) error {
	if _, exists := s.items[id]; !exists {
		return fmt.Errorf("knowledge item with ID %s: %w", id, ErrItemNotFound)
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// list returns clones of the items in the collection in insertion order
func (s *itemSet) list(collection Collection) ([]Item, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	results := make([]Item, 0)
	for _, id := range s.order {
		item := s.items[id]
		if collection.In(item) {
			results = append(results, item.Clone())
		}
	}
	return results, nil
}

// all returns every item in insertion order, used for persistence
func (s *itemSet) all() []Item {
	results := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		results = append(results, s.items[id])
	}
	return results
}

// load upserts items, keeping the position of those already present
func (s *itemSet) load(items []Item, now time.Time) error {
	seenIDs := make(map[string]bool)
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item at index %d must have an ID", i)
		}
		if seenIDs[item.ID] {
			return fmt.Errorf("duplicate item ID found in input: %s", item.ID)
		}
		seenIDs[item.ID] = true
	}

	for _, item := range items {
		if _, exists := s.items[item.ID]; !exists {
			if err := s.add(item, now); err != nil {
				return err
			}
			continue
		}
		if err := s.update(item, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *itemSet) clearVisits() {
	for id, item := range s.items {
		item.LastVisitedAt = time.Time{}
		s.items[id] = item
	}
}

func archive(at time.Time) func(*Item) error {
	return func(item *Item) error {
		if item.Archived() {
			return fmt.Errorf("active knowledge item with ID %s: %w", item.ID, ErrItemNotFound)
		}
		item.ArchivedAt = at
		return nil
	}
}

func restore(item *Item) error {
	if !item.Archived() {
		return fmt.Errorf("archived knowledge item with ID %s: %w", item.ID, ErrItemNotFound)
	}
	item.ArchivedAt = time.Time{}
	return nil
}

func favorite(on bool) func(*Item) error {
	return func(item *Item) error {
		item.Favorite = on
		return nil
	}
}

func touch(at time.Time) func(*Item) error {
	return func(item *Item) error {
		item.LastVisitedAt = at
		return nil
	}
}
