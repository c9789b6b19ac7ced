package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbrowse/internal/knowledge"
	"kbrowse/internal/listing"
	"kbrowse/internal/logging"
)

func newTestRuntime(t *testing.T, now time.Time) *RuntimeContext {
	t.Helper()

	store, err := knowledge.NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Open())

	items, err := knowledge.DefaultSeed(time.UTC)
	require.NoError(t, err)
	require.NoError(t, store.LoadItems(items...))

	rt, err := NewRuntimeContext(RuntimeOptions{
		Store:    store,
		Logger:   logging.DevNull(),
		Clock:    func() time.Time { return now },
		Location: time.UTC,
	})
	require.NoError(t, err)
	return rt
}

func TestNewRuntimeContext(t *testing.T) {
	_, err := NewRuntimeContext(RuntimeOptions{})
	assert.Error(t, err)

	rt := newTestRuntime(t, time.Date(2024, 1, 25, 18, 0, 0, 0, time.UTC))
	assert.Error(t, rt.SetStore(nil))
	assert.Equal(t, time.UTC, rt.Now().Location())
}

func TestRuntimeBrowse(t *testing.T) {
	rt := newTestRuntime(t, time.Date(2024, 1, 25, 18, 0, 0, 0, time.UTC))

	res, err := rt.Browse(listing.Recent(), listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5", "1", "4"}, itemIDs(res.Items))

	res, err = rt.Browse(listing.Recent(), listing.Query{Window: listing.Today()})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, itemIDs(res.Items))

	_, err = rt.Browse(listing.Home(), listing.Query{Window: listing.Today()})
	assert.True(t, errors.Is(err, listing.ErrInvalidQuery))
}

func TestRuntimeOpenAndArchive(t *testing.T) {
	now := time.Date(2024, 1, 26, 8, 0, 0, 0, time.UTC)
	rt := newTestRuntime(t, now)

	item, err := rt.Open("6")
	require.NoError(t, err)
	assert.True(t, item.LastVisitedAt.Equal(now))

	res, err := rt.Browse(listing.Recent(), listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, "6", res.Items[0].ID)

	require.NoError(t, rt.Archive("6"))
	res, err = rt.Browse(listing.Archive(), listing.Query{})
	require.NoError(t, err)
	assert.Equal(t, "6", res.Items[0].ID)

	_, err = rt.Open("missing")
	assert.True(t, errors.Is(err, knowledge.ErrItemNotFound))
	assert.NoError(t, rt.Flush())
}

func itemIDs(items []knowledge.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
