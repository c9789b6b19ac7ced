package knowledge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan1  = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	jan2  = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	jan10 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
)

func contractItems() []Item {
	return []Item{
		{ID: "b", Title: "Second letter", Body: "bravo", Tags: []string{"nato"}, CreatedAt: jan1, UpdatedAt: jan1},
		{ID: "a", Title: "First letter", Body: "alpha", Tags: []string{"nato", "greek"}, CreatedAt: jan2, UpdatedAt: jan2},
		{ID: "c", Title: "Third letter", Body: "charlie", CreatedAt: jan2, UpdatedAt: jan2},
	}
}

func listIDs(t *testing.T, store Store, collection Collection) []string {
	t.Helper()
	items, err := store.ListItems(collection)
	require.NoError(t, err)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

// testStoreContract runs the behaviour every Store implementation shares.
// newStore must return an opened, empty store.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("add and get", func(t *testing.T) {
		store := newStore(t)
		for _, item := range contractItems() {
			require.NoError(t, store.AddItem(item))
		}

		got, err := store.GetItem("a")
		require.NoError(t, err)
		assert.Equal(t, "First letter", got.Title)
		assert.Equal(t, []string{"nato", "greek"}, got.Tags)
		assert.True(t, got.CreatedAt.Equal(jan2))

		err = store.AddItem(contractItems()[0])
		assert.True(t, errors.Is(err, ErrItemExists), "got %v", err)

		_, err = store.GetItem("missing")
		assert.True(t, errors.Is(err, ErrItemNotFound), "got %v", err)

		assert.Error(t, store.AddItem(Item{Title: "No ID"}))
	})

	t.Run("storage order", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))
		assert.Equal(t, []string{"b", "a", "c"}, listIDs(t, store, CollectionAll))

		// Updating keeps the position
		item, err := store.GetItem("b")
		require.NoError(t, err)
		item.Title = "Bravo"
		item.UpdatedAt = jan10
		require.NoError(t, store.UpdateItem(item))
		assert.Equal(t, []string{"b", "a", "c"}, listIDs(t, store, CollectionAll))

		got, err := store.GetItem("b")
		require.NoError(t, err)
		assert.Equal(t, "Bravo", got.Title)
		assert.True(t, got.UpdatedAt.Equal(jan10))
	})

	t.Run("returned items are copies", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))

		got, err := store.GetItem("a")
		require.NoError(t, err)
		got.Tags[0] = "changed"

		again, err := store.GetItem("a")
		require.NoError(t, err)
		assert.Equal(t, "nato", again.Tags[0])
	})

	t.Run("update missing", func(t *testing.T) {
		store := newStore(t)
		err := store.UpdateItem(Item{ID: "ghost", Title: "Ghost"})
		assert.True(t, errors.Is(err, ErrItemNotFound), "got %v", err)
	})

	t.Run("archive and restore", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))

		require.NoError(t, store.ArchiveItem("a", jan10))
		assert.Equal(t, []string{"b", "c"}, listIDs(t, store, CollectionAll))
		assert.Equal(t, []string{"a"}, listIDs(t, store, CollectionArchive))

		archived, err := store.GetItem("a")
		require.NoError(t, err)
		assert.True(t, archived.ArchivedAt.Equal(jan10))

		err = store.ArchiveItem("a", jan10)
		assert.True(t, errors.Is(err, ErrItemNotFound), "archiving twice: %v", err)

		require.NoError(t, store.RestoreItem("a"))
		assert.Equal(t, []string{"b", "a", "c"}, listIDs(t, store, CollectionAll))
		assert.Empty(t, listIDs(t, store, CollectionArchive))

		err = store.RestoreItem("a")
		assert.True(t, errors.Is(err, ErrItemNotFound), "restoring active: %v", err)
	})

	t.Run("favorites", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))

		require.NoError(t, store.SetFavorite("c", true))
		require.NoError(t, store.SetFavorite("b", true))
		assert.Equal(t, []string{"b", "c"}, listIDs(t, store, CollectionFavorites))

		// Archived favorites drop out of the collection
		require.NoError(t, store.ArchiveItem("b", jan10))
		assert.Equal(t, []string{"c"}, listIDs(t, store, CollectionFavorites))

		require.NoError(t, store.SetFavorite("c", false))
		assert.Empty(t, listIDs(t, store, CollectionFavorites))

		err := store.SetFavorite("missing", true)
		assert.True(t, errors.Is(err, ErrItemNotFound))
	})

	t.Run("visits", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))
		assert.Empty(t, listIDs(t, store, CollectionRecent))

		require.NoError(t, store.TouchItem("c", jan10))
		require.NoError(t, store.TouchItem("b", jan2))
		assert.Equal(t, []string{"b", "c"}, listIDs(t, store, CollectionRecent))

		got, err := store.GetItem("c")
		require.NoError(t, err)
		assert.True(t, got.LastVisitedAt.Equal(jan10))

		// A zero visit time removes the item from the history
		require.NoError(t, store.TouchItem("b", time.Time{}))
		assert.Equal(t, []string{"c"}, listIDs(t, store, CollectionRecent))

		require.NoError(t, store.ClearVisits())
		assert.Empty(t, listIDs(t, store, CollectionRecent))

		err = store.TouchItem("missing", jan10)
		assert.True(t, errors.Is(err, ErrItemNotFound))
	})

	t.Run("purge", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))

		require.NoError(t, store.PurgeItem("a"))
		assert.Equal(t, []string{"b", "c"}, listIDs(t, store, CollectionAll))

		err := store.PurgeItem("a")
		assert.True(t, errors.Is(err, ErrItemNotFound))
	})

	t.Run("load upserts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.LoadItems(contractItems()...))

		changed := contractItems()[1]
		changed.Title = "Alpha"
		require.NoError(t, store.LoadItems(changed, Item{ID: "d", Title: "Fourth letter", CreatedAt: jan10, UpdatedAt: jan10}))
		assert.Equal(t, []string{"b", "a", "c", "d"}, listIDs(t, store, CollectionAll))

		got, err := store.GetItem("a")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", got.Title)

		assert.Error(t, store.LoadItems(Item{ID: "x", Title: "X"}, Item{ID: "x", Title: "X again"}))
		assert.Error(t, store.LoadItems(Item{Title: "No ID"}))
		assert.NoError(t, store.LoadItems())
	})

	t.Run("unknown collection", func(t *testing.T) {
		store := newStore(t)
		_, err := store.ListItems(Collection("trash"))
		assert.Error(t, err)
	})
}
