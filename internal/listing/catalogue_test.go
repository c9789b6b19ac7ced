package listing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbrowse/internal/knowledge"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"archive", "favorites", "home", "recent", "search", "tags"}, Names())

	l, err := Lookup(" Archive ")
	require.NoError(t, err)
	assert.Equal(t, "archive", l.Name)
	assert.Equal(t, knowledge.CollectionArchive, l.Collection)

	_, err = Lookup("trash")
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestListingDefaults(t *testing.T) {
	tests := []struct {
		listing Listing
		want    Sort
		window  bool
		indexed bool
	}{
		{Home(), By(SortUpdatedAt, Descending), false, false},
		{Search(), By(SortRelevance, ""), false, false},
		{Tags(), By(SortUpdatedAt, Descending), false, true},
		{Favorites(), By(SortUpdatedAt, Descending), false, false},
		{Recent(), By(SortLastVisitedAt, Descending), true, false},
		{Archive(), By(SortArchivedAt, Descending), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.listing.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.DefaultSort())
			assert.Equal(t, tt.window, tt.listing.SupportsWindow())
			assert.Equal(t, tt.indexed, tt.listing.Index != nil)

			// Every advertised option must be valid for the listing
			for _, opt := range tt.listing.SortOptions {
				_, err := tt.listing.resolveSort(opt.Sort)
				assert.NoError(t, err, opt.Name)
			}
		})
	}
}

func TestListingParseSort(t *testing.T) {
	archive := Archive()

	s, err := archive.ParseSort("oldest_created")
	require.NoError(t, err)
	assert.Equal(t, By(SortCreatedAt, Ascending), s)

	s, err = archive.ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, archive.DefaultSort(), s)

	s, err = archive.ParseSort("title desc")
	require.NoError(t, err)
	assert.Equal(t, By(SortTitle, Descending), s)

	s, err = Recent().ParseSort("lastVisitedAt")
	require.NoError(t, err)
	assert.Equal(t, "lastVisitedAt desc", s.String())

	for _, name := range []string{"popular", "title up", "updatedAt desc extra"} {
		_, err = archive.ParseSort(name)
		assert.True(t, errors.Is(err, ErrInvalidQuery), name)
	}

	// Home records carry no archive timestamp
	_, err = Home().ParseSort("archivedAt")
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestParseSortSpec(t *testing.T) {
	s, err := ParseSortSpec("createdAt ASC")
	require.NoError(t, err)
	assert.Equal(t, By(SortCreatedAt, Ascending), s)
	assert.Equal(t, "createdAt asc", s.String())

	s, err = ParseSortSpec("title")
	require.NoError(t, err)
	assert.Equal(t, "title asc", s.String())

	_, err = ParseSortSpec("")
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}
