package listing

import (
	"sort"
	"strings"

	"kbrowse/internal/knowledge"
)

// SortOption is a named entry of a listing's sort menu
type SortOption struct {
	Name  string
	Label string
	Sort  Sort
}

// Listing describes one page of the knowledge browser
type Listing struct {
	Name        string
	Collection  knowledge.Collection // Store collection backing the listing
	Shape       Shape                // Fields its records carry
	Matcher     Matcher              // Search-term predicate, MatchesSearch when nil
	WindowField Field                // Timestamp time windows apply to, empty when unsupported
	SortOptions []SortOption         // Sort menu, the first entry is the default
	Index       Indexer              // Tag index builder, nil when the page shows no tag counts
}

// DefaultSort is the first sort option, or relevance when there is none
func (l Listing) DefaultSort() Sort {
	if len(l.SortOptions) == 0 {
		return By(SortRelevance, "")
	}
	return l.SortOptions[0].Sort
}

// ParseSort resolves a sort option name, or a raw "key [asc|desc]" spec
func (l Listing) ParseSort(name string) (Sort, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return l.DefaultSort(), nil
	}
	for _, opt := range l.SortOptions {
		if opt.Name == name {
			return opt.Sort, nil
		}
	}

	s, err := ParseSortSpec(name)
	if err != nil {
		return Sort{}, err
	}
	return l.resolveSort(s)
}

// SupportsWindow reports whether time windows apply to the listing
func (l Listing) SupportsWindow() bool {
	return l.WindowField != "" && l.Shape.Has(l.WindowField)
}

var (
	sortNewest       = SortOption{Name: "newest", Label: "Recently updated", Sort: By(SortUpdatedAt, Descending)}
	sortOldest       = SortOption{Name: "oldest", Label: "Earliest created", Sort: By(SortCreatedAt, Ascending)}
	sortAlphabetical = SortOption{Name: "alphabetical", Label: "Alphabetical", Sort: By(SortTitle, Ascending)}
)

// Home lists the active knowledge base. Its search box only looks at titles and bodies.
func Home() Listing {
	return Listing{
		Name:        "home",
		Collection:  knowledge.CollectionAll,
		Shape:       BaseShape,
		Matcher:     MatchesTitleOrBody,
		SortOptions: []SortOption{sortNewest, sortOldest, sortAlphabetical},
	}
}

// Search lists the active knowledge base ranked by the title-match heuristic
func Search() Listing {
	return Listing{
		Name:       "search",
		Collection: knowledge.CollectionAll,
		Shape:      BaseShape,
		Matcher:    MatchesSearch,
		SortOptions: []SortOption{
			{Name: "relevance", Label: "Relevance", Sort: By(SortRelevance, "")},
			sortNewest,
			sortOldest,
		},
	}
}

// Tags browses the tag vocabulary. The term narrows the vocabulary, not the items.
func Tags() Listing {
	return Listing{
		Name:        "tags",
		Collection:  knowledge.CollectionAll,
		Shape:       BaseShape,
		Matcher:     MatchAll,
		SortOptions: []SortOption{sortNewest, sortOldest, sortAlphabetical},
		Index:       BuildTagIndex,
	}
}

// Favorites lists the items marked as favorite
func Favorites() Listing {
	return Listing{
		Name:        "favorites",
		Collection:  knowledge.CollectionFavorites,
		Shape:       BaseShape,
		Matcher:     MatchesSearch,
		SortOptions: []SortOption{sortNewest, sortOldest, sortAlphabetical},
	}
}

// Recent lists visited items, latest visit first
func Recent() Listing {
	return Listing{
		Name:        "recent",
		Collection:  knowledge.CollectionRecent,
		Shape:       BaseShape.With(FieldLastVisitedAt),
		Matcher:     MatchesSearch,
		WindowField: FieldLastVisitedAt,
		SortOptions: []SortOption{
			{Name: "recent", Label: "Last visited", Sort: By(SortLastVisitedAt, Descending)},
			{Name: "oldest_visited", Label: "First visited", Sort: By(SortLastVisitedAt, Ascending)},
		},
	}
}

// Archive lists archived items with their tag index
func Archive() Listing {
	return Listing{
		Name:        "archive",
		Collection:  knowledge.CollectionArchive,
		Shape:       BaseShape.With(FieldArchivedAt),
		Matcher:     MatchesSearch,
		WindowField: FieldArchivedAt,
		SortOptions: []SortOption{
			{Name: "newest_archived", Label: "Recently archived", Sort: By(SortArchivedAt, Descending)},
			{Name: "oldest_archived", Label: "Earliest archived", Sort: By(SortArchivedAt, Ascending)},
			{Name: "newest_updated", Label: "Recently updated", Sort: By(SortUpdatedAt, Descending)},
			{Name: "oldest_created", Label: "Earliest created", Sort: By(SortCreatedAt, Ascending)},
		},
		Index: BuildTagIndex,
	}
}

var catalogue = map[string]func() Listing{
	"home":      Home,
	"search":    Search,
	"tags":      Tags,
	"favorites": Favorites,
	"recent":    Recent,
	"archive":   Archive,
}

// Lookup returns the listing with the given name
func Lookup(name string) (Listing, error) {
	build, ok := catalogue[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Listing{}, invalidQuery("unknown listing %q", name)
	}
	return build(), nil
}

// Names returns the listing names in alphabetical order
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
