package knowledge

import (
	"errors"
	"time"
)

// Collection names a record collection a store can supply
type Collection string

// Collection constants
const (
	CollectionAll       Collection = "all"       // Every item that is not archived
	CollectionFavorites Collection = "favorites" // Favorite items that are not archived
	CollectionRecent    Collection = "recent"    // Items that have been visited at least once
	CollectionArchive   Collection = "archive"   // Archived items
)

// Store errors
var (
	ErrItemNotFound = errors.New("knowledge item not found")
	ErrItemExists   = errors.New("knowledge item already exists")
	ErrStoreClosed  = errors.New("store not initialized")
)

// Item represents a single knowledge item
type Item struct {
	ID            string    `json:"id"`                       // Unique identifier, immutable
	Title         string    `json:"title"`                    // Non-empty title
	Body          string    `json:"body"`                     // Main content
	Tags          []string  `json:"tags"`                     // Labels, insertion order preserved
	CreatedAt     time.Time `json:"created_at"`               // When this item was created
	UpdatedAt     time.Time `json:"updated_at"`               // When this item was last modified
	ArchivedAt    time.Time `json:"archived_at,omitzero"`     // When this item was archived, zero if active
	LastVisitedAt time.Time `json:"last_visited_at,omitzero"` // When this item was last opened, zero if never
	Favorite      bool      `json:"favorite,omitempty"`       // Whether the item is in the favorites collection
}

// Archived reports whether the item has been archived
func (i Item) Archived() bool {
	return !i.ArchivedAt.IsZero()
}

// Visited reports whether the item has a visit recorded
func (i Item) Visited() bool {
	return !i.LastVisitedAt.IsZero()
}

// Clone returns a copy of the item that shares no slices with the original
func (i Item) Clone() Item {
	if i.Tags != nil {
		tags := make([]string, len(i.Tags))
		copy(tags, i.Tags)
		i.Tags = tags
	}
	return i
}

// In reports whether the item belongs to the collection
func (c Collection) In(item Item) bool {
	switch c {
	case CollectionAll:
		return !item.Archived()
	case CollectionFavorites:
		return item.Favorite && !item.Archived()
	case CollectionRecent:
		return item.Visited()
	case CollectionArchive:
		return item.Archived()
	default:
		return false
	}
}

// Valid reports whether c is a known collection
func (c Collection) Valid() bool {
	switch c {
	case CollectionAll, CollectionFavorites, CollectionRecent, CollectionArchive:
		return true
	}
	return false
}

// Store interface for knowledge item storage
type Store interface {
	AddItem(item Item) error                         // Add an item to the storage
	GetItem(id string) (Item, error)                 // Retrieve item by ID
	UpdateItem(item Item) error                      // Update item
	ArchiveItem(id string, at time.Time) error       // Move an item to the archive, this is soft delete
	RestoreItem(id string) error                     // Take an item out of the archive
	PurgeItem(id string) error                       // Permanent deletion
	SetFavorite(id string, favorite bool) error      // Add to or remove from favorites
	TouchItem(id string, at time.Time) error         // Record a visit, a zero time forgets it
	ClearVisits() error                              // Forget every recorded visit
	ListItems(collection Collection) ([]Item, error) // Items of a collection in storage order
	LoadItems(items ...Item) error                   // Add or update many items at once
	Open() error                                     // Open/Load datastore
	Flush() error                                    // Write any pending data to the storage, no-op in some providers
	Close() error                                    // Closes storage (files/db connections)
	Info() (map[string]string, error)                // Provides implementation specific information
}
