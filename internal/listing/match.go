package listing

import (
	"slices"
	"strings"

	"kbrowse/internal/knowledge"
)

// Matcher decides whether an item matches a search term
type Matcher func(item knowledge.Item, term string) bool

// MatchesSearch reports whether the lowercased term occurs in the title, the
// body or any tag of the item. An empty term matches everything.
func MatchesSearch(item knowledge.Item, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(item.Title), term) ||
		strings.Contains(strings.ToLower(item.Body), term) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// MatchesTitleOrBody is MatchesSearch without the tag check
func MatchesTitleOrBody(item knowledge.Item, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(item.Title), term) ||
		strings.Contains(strings.ToLower(item.Body), term)
}

// MatchAll ignores the term. Listings using it apply the term to their tag vocabulary instead.
func MatchAll(knowledge.Item, string) bool {
	return true
}

// HasTag reports whether tag is empty or an exact, case-sensitive member of the item's tags
func HasTag(item knowledge.Item, tag string) bool {
	return tag == "" || slices.Contains(item.Tags, tag)
}

// titleContains is the relevance test: the term occurs in the title
func titleContains(item knowledge.Item, loweredTerm string) bool {
	return strings.Contains(strings.ToLower(item.Title), loweredTerm)
}
