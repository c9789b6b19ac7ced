package listing

import (
	"time"

	"kbrowse/internal/knowledge"
)

// Exclude returns a copy of items without the record whose ID is id.
// Removing an unknown ID returns an unchanged copy.
func Exclude(items []knowledge.Item, id string) []knowledge.Item {
	out := make([]knowledge.Item, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Touch returns a copy of items with the visit time of id set to at
func Touch(items []knowledge.Item, id string, at time.Time) []knowledge.Item {
	out := make([]knowledge.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == id {
			out[i].LastVisitedAt = at
		}
	}
	return out
}

// Clear empties a working set such as the visit history
func Clear() []knowledge.Item {
	return []knowledge.Item{}
}
