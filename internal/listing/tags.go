package listing

import (
	"slices"
	"strings"

	"kbrowse/internal/knowledge"
)

// TagIndex is the tag vocabulary of a record collection with per-tag record counts
type TagIndex struct {
	Tags   []string       // Distinct tags, ascending
	Counts map[string]int // Number of records carrying each tag
}

// Indexer builds a TagIndex from a record collection
type Indexer func(items []knowledge.Item) TagIndex

// ExtractAllTags returns every distinct tag across items, sorted ascending.
// Tags are compared by exact, case-sensitive equality.
func ExtractAllTags(items []knowledge.Item) []string {
	tags := make([]string, 0)
	for _, item := range items {
		tags = append(tags, item.Tags...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// CalculateTagCounts maps each tag to the number of items carrying it.
// An item that repeats a tag is counted once.
func CalculateTagCounts(items []knowledge.Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		seen := make(map[string]bool, len(item.Tags))
		for _, tag := range item.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}
	return counts
}

// BuildTagIndex is the default Indexer
func BuildTagIndex(items []knowledge.Item) TagIndex {
	return TagIndex{
		Tags:   ExtractAllTags(items),
		Counts: CalculateTagCounts(items),
	}
}

// FilterTags returns the tags containing term, case-insensitively, in their original order
func FilterTags(tags []string, term string) []string {
	term = strings.ToLower(term)
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			out = append(out, tag)
		}
	}
	return out
}
