package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"kbrowse/internal/knowledge"
)

// sortItems orders items in place. Every ordering is stable.
func sortItems(items []knowledge.Item, s Sort, term string, lang language.Tag) []knowledge.Item {
	switch s.Key {
	case SortRelevance:
		return partitionByTitle(items, strings.ToLower(term))

	case SortTitle:
		// A Collator keeps scratch buffers, so each call gets its own
		coll := collate.New(lang)
		desc := s.direction() == Descending
		slices.SortStableFunc(items, func(a, b knowledge.Item) int {
			c := coll.CompareString(a.Title, b.Title)
			if desc {
				return -c
			}
			return c
		})
		return items

	default:
		field, _ := s.Key.Field()
		desc := s.direction() == Descending
		slices.SortStableFunc(items, func(a, b knowledge.Item) int {
			c := field.Time(a).Compare(field.Time(b))
			if desc {
				return -c
			}
			return c
		})
		return items
	}
}

// partitionByTitle moves items whose title contains the term ahead of the
// rest, keeping the input order inside both groups
func partitionByTitle(items []knowledge.Item, loweredTerm string) []knowledge.Item {
	inTitle := make([]knowledge.Item, 0, len(items))
	rest := make([]knowledge.Item, 0)
	for _, item := range items {
		if titleContains(item, loweredTerm) {
			inTitle = append(inTitle, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(inTitle, rest...)
}
