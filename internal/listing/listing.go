// Package listing filters, indexes and orders knowledge items for display.
//
// Every listing (home, search, tags, favorites, recent, archive) runs the same
// pipeline: a record is kept when it matches the search term AND the selected
// tag AND the time window, then the survivors are ordered by a stable sort.
// A Listing value captures what differs between pages: the fields its records
// carry, the matcher, the designated time-window field, the named sort options
// and the tag index builder.
//
// The engine is pure. It never mutates its input and performs no I/O, so a
// single Engine may serve concurrent callers.
package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kbrowse/internal/knowledge"
)

// ErrInvalidQuery reports a query the listing cannot answer, such as a sort
// key whose backing field the listing's records do not carry.
var ErrInvalidQuery = errors.New("invalid query")

func invalidQuery(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// Field names an item attribute a listing can sort or window on
type Field string

// Field constants
const (
	FieldTitle         Field = "title"
	FieldCreatedAt     Field = "createdAt"
	FieldUpdatedAt     Field = "updatedAt"
	FieldArchivedAt    Field = "archivedAt"
	FieldLastVisitedAt Field = "lastVisitedAt"
)

// Time returns the timestamp stored in f, or the zero time for non-timestamp fields
func (f Field) Time(item knowledge.Item) time.Time {
	switch f {
	case FieldCreatedAt:
		return item.CreatedAt
	case FieldUpdatedAt:
		return item.UpdatedAt
	case FieldArchivedAt:
		return item.ArchivedAt
	case FieldLastVisitedAt:
		return item.LastVisitedAt
	default:
		return time.Time{}
	}
}

// IsTimestamp reports whether f holds a timestamp
func (f Field) IsTimestamp() bool {
	switch f {
	case FieldCreatedAt, FieldUpdatedAt, FieldArchivedAt, FieldLastVisitedAt:
		return true
	}
	return false
}

// Shape is the set of fields the records of a listing carry
type Shape []Field

// BaseShape is carried by every knowledge item
var BaseShape = Shape{FieldTitle, FieldCreatedAt, FieldUpdatedAt}

// With returns a new shape extended by fields
func (s Shape) With(fields ...Field) Shape {
	out := make(Shape, 0, len(s)+len(fields))
	out = append(out, s...)
	return append(out, fields...)
}

// Has reports whether f is part of the shape
func (s Shape) Has(f Field) bool {
	for _, field := range s {
		if field == f {
			return true
		}
	}
	return false
}

// SortKey is the attribute results are ordered by
type SortKey string

// SortKey constants
const (
	SortCreatedAt     SortKey = "createdAt"
	SortUpdatedAt     SortKey = "updatedAt"
	SortArchivedAt    SortKey = "archivedAt"
	SortLastVisitedAt SortKey = "lastVisitedAt"
	SortTitle         SortKey = "title"
	SortRelevance     SortKey = "relevance"
)

// Field returns the item field backing the key
func (k SortKey) Field() (Field, bool) {
	switch k {
	case SortCreatedAt:
		return FieldCreatedAt, true
	case SortUpdatedAt:
		return FieldUpdatedAt, true
	case SortArchivedAt:
		return FieldArchivedAt, true
	case SortLastVisitedAt:
		return FieldLastVisitedAt, true
	case SortTitle, SortRelevance:
		return FieldTitle, true
	default:
		return "", false
	}
}

// Direction of a sort
type Direction string

// Direction constants
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort pairs a key with a direction. An empty direction means descending
// for timestamps and ascending for titles. Relevance ignores the direction.
type Sort struct {
	Key SortKey
	Dir Direction
}

// By returns a Sort on key in the given direction
func By(key SortKey, dir Direction) Sort {
	return Sort{Key: key, Dir: dir}
}

// IsZero reports whether no sort was chosen
func (s Sort) IsZero() bool {
	return s.Key == ""
}

// direction resolves the effective direction
func (s Sort) direction() Direction {
	if s.Dir != "" {
		return s.Dir
	}
	if f, ok := s.Key.Field(); ok && f.IsTimestamp() {
		return Descending
	}
	return Ascending
}

func (s Sort) String() string {
	if s.Key == SortRelevance {
		return string(s.Key)
	}
	return string(s.Key) + " " + string(s.direction())
}

// ParseSortSpec reads "key" or "key asc|desc", e.g. "createdAt desc"
func ParseSortSpec(spec string) (Sort, error) {
	parts := strings.Fields(spec)
	if len(parts) == 0 || len(parts) > 2 {
		return Sort{}, invalidQuery("malformed sort %q", spec)
	}

	s := Sort{Key: SortKey(parts[0])}
	if _, ok := s.Key.Field(); !ok {
		return Sort{}, invalidQuery("unknown sort key %q", parts[0])
	}
	if len(parts) == 2 {
		switch dir := Direction(strings.ToLower(parts[1])); dir {
		case Ascending, Descending:
			s.Dir = dir
		default:
			return Sort{}, invalidQuery("unknown sort direction %q", parts[1])
		}
	}
	return s, nil
}
