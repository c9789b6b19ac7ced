package knowledge

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "knowledge.json"))
		require.NoError(t, err)
		require.NoError(t, store.Open())
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestNewFileStore(t *testing.T) {
	tempDir := t.TempDir()
	storeFile := filepath.Join(tempDir, "nested", "knowledge.json")

	store, err := NewFileStore(storeFile)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(storeFile)); err != nil {
		t.Fatalf("Store directory should exist: %v", err)
	}

	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	info, err := store.Info()
	if err != nil {
		t.Fatalf("Failed to get store info: %v", err)
	}
	if info["implementation"] != "FileStore" {
		t.Errorf("Expected implementation to be FileStore, got %s", info["implementation"])
	}
	if info["file_path"] != storeFile {
		t.Errorf("Expected file_path to be %s, got %s", storeFile, info["file_path"])
	}
	if info["file_name"] != "knowledge.json" {
		t.Errorf("Expected file_name to be knowledge.json, got %s", info["file_name"])
	}
	if info["is_dirty"] != "false" {
		t.Errorf("Fresh store should not be dirty")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}
}

func TestFileStore_Persistence(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "knowledge.json")

	store, _ := NewFileStore(storeFile)
	require.NoError(t, store.Open())
	require.NoError(t, store.LoadItems(contractItems()...))
	require.NoError(t, store.ArchiveItem("c", jan10))
	require.NoError(t, store.SetFavorite("a", true))
	require.NoError(t, store.TouchItem("b", jan10))

	info, _ := store.Info()
	assert.Equal(t, "true", info["is_dirty"])

	require.NoError(t, store.Flush())
	info, _ = store.Info()
	assert.Equal(t, "false", info["is_dirty"])
	require.NoError(t, store.Close())

	reopened, _ := NewFileStore(storeFile)
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	assert.Equal(t, []string{"b", "a"}, listIDs(t, reopened, CollectionAll))
	assert.Equal(t, []string{"c"}, listIDs(t, reopened, CollectionArchive))
	assert.Equal(t, []string{"a"}, listIDs(t, reopened, CollectionFavorites))
	assert.Equal(t, []string{"b"}, listIDs(t, reopened, CollectionRecent))

	archived, err := reopened.GetItem("c")
	require.NoError(t, err)
	assert.True(t, archived.ArchivedAt.Equal(jan10))
}

func TestFileStore_CloseFlushes(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "knowledge.json")

	store, _ := NewFileStore(storeFile)
	_ = store.Open()
	_ = store.AddItem(contractItems()[0])
	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	data, err := os.ReadFile(storeFile)
	if err != nil {
		t.Fatalf("Store file should exist after close: %v", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		t.Fatalf("Store file is not valid JSON: %v", err)
	}
	if fd.Version != fileFormatVersion {
		t.Errorf("Expected version %d, got %d", fileFormatVersion, fd.Version)
	}
	if len(fd.Items) != 1 || fd.Items[0].ID != "b" {
		t.Errorf("Unexpected items in store file: %+v", fd.Items)
	}
	if _, err := os.Stat(storeFile + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should be renamed away")
	}
}

func TestFileStore_OmitsAbsentTimestamps(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "knowledge.json")

	store, _ := NewFileStore(storeFile)
	_ = store.Open()
	_ = store.AddItem(contractItems()[0])
	require.NoError(t, store.Close())

	data, err := os.ReadFile(storeFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "archived_at")
	assert.NotContains(t, string(data), "last_visited_at")
}

func TestFileStore_CorruptFile(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(storeFile, []byte("{not json"), 0644))

	store, _ := NewFileStore(storeFile)
	assert.Error(t, store.Open())

	require.NoError(t, os.WriteFile(storeFile, []byte(`{"version": 99, "items": []}`), 0644))
	assert.Error(t, store.Open())
}

func TestFileStore_Closed(t *testing.T) {
	store, _ := NewFileStore(filepath.Join(t.TempDir(), "knowledge.json"))

	err := store.AddItem(Item{ID: "1", Title: "Before open"})
	assert.True(t, errors.Is(err, ErrStoreClosed))
}

func TestFileStore_ConcurrentAccess(t *testing.T) {
	store, _ := NewFileStore(filepath.Join(t.TempDir(), "knowledge.json"))
	require.NoError(t, store.Open())
	defer store.Close()
	require.NoError(t, store.LoadItems(contractItems()...))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.TouchItem("a", jan10)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.ListItems(CollectionRecent)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"a"}, listIDs(t, store, CollectionRecent))
}
