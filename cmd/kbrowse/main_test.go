package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbrowse/internal/listing"
)

// execute runs the CLI with args and returns what it printed
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Setenv("KB_STORE", "memory")
	t.Setenv("KB_SEED", "true")
	t.Setenv("KB_LOG_LEVEL", "error")
	t.Setenv("KB_LOCALE", "en")
}

func fileEnv(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "kb.json")
	t.Setenv("KB_STORE", "file")
	t.Setenv("KB_FILE", path)
	t.Setenv("KB_LOG_LEVEL", "error")
	t.Setenv("KB_LOCALE", "en")
	return path
}

func TestListCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "", "list", "--listing", "favorites", "--sort", "alphabetical")
	require.NoError(t, err)
	assert.Contains(t, out, "== favorites | sort: alphabetical ==")
	assert.Contains(t, out, "  1. [3] Building a Design System")
	assert.Contains(t, out, "3 items")

	out, err = execute(t, "", "list", "-l", "recent", "-w", "today", "--now", "2024-01-25 18:00")
	require.NoError(t, err)
	assert.Contains(t, out, "window: today")
	assert.Contains(t, out, "  1. [2] Advanced TypeScript Techniques")
	assert.Contains(t, out, "2 items")

	out, err = execute(t, "", "list", "-l", "search", "-q", "react")
	require.NoError(t, err)
	assert.Contains(t, out, "  1. [1] React Hooks Best Practices")
}

func TestListCommandInvalidQuery(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "", "list", "--window", "today")
	assert.True(t, errors.Is(err, listing.ErrInvalidQuery), "got %v", err)

	_, err = execute(t, "", "list", "--sort", "archivedAt")
	assert.True(t, errors.Is(err, listing.ErrInvalidQuery), "got %v", err)

	_, err = execute(t, "", "list", "--listing", "trash")
	assert.True(t, errors.Is(err, listing.ErrInvalidQuery), "got %v", err)

	_, err = execute(t, "", "list", "--now", "someday")
	assert.Error(t, err)
}

func TestTagsCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "", "tags", "--term", "front")
	require.NoError(t, err)
	assert.Equal(t, "Frontend\t2\n", out)
}

func TestBrowseCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "list archive\nexit\n", "browse")
	require.NoError(t, err)
	assert.Contains(t, out, "== home | sort: newest ==")
	assert.Contains(t, out, "> list archive")
	assert.Contains(t, out, "== archive | sort: newest_archived | window: all ==")
	assert.Contains(t, out, "Goodbye!")
}

func TestFileStoreWorkflow(t *testing.T) {
	path := fileEnv(t)

	out, err := execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No items")

	out, err = execute(t, "", "seed")
	require.NoError(t, err)
	assert.Equal(t, "Loaded 11 items\n", out)

	out, err = execute(t, "", "add", "--title", "Go generics", "--body", "Type parameters", "-t", "Go", "-t", "Language")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Added "), out)

	out, err = execute(t, "", "list", "-q", "generics")
	require.NoError(t, err)
	assert.Contains(t, out, "Go generics  #Go #Language")
	assert.Contains(t, out, "1 item\n")

	out, err = execute(t, "", "list", "-l", "archive", "-s", "oldest_archived")
	require.NoError(t, err)
	assert.Contains(t, out, "  1. [11] Abandoned Design Proposal")
	assert.Contains(t, out, "5 items")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSeedFromFile(t *testing.T) {
	fileEnv(t)

	seedFile := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
items:
  - id: custom-1
    title: Custom note
    tags: [custom]
    created_at: "2024-02-01"
    updated_at: "2024-02-01"
`), 0644))

	out, err := execute(t, "", "seed", "--file", seedFile)
	require.NoError(t, err)
	assert.Equal(t, "Loaded 1 items\n", out)

	out, err = execute(t, "", "tags")
	require.NoError(t, err)
	assert.Equal(t, "custom\t1\n", out)

	_, err = execute(t, "", "seed", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAddCommandRequiresTitle(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "", "add", "--body", "no title")
	assert.Error(t, err)

	_, err = execute(t, "", "add", "--title", "  ")
	assert.Error(t, err)
}

func TestBadConfiguration(t *testing.T) {
	t.Setenv("KB_STORE", "redis")

	_, err := execute(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported KB_STORE")
}

func TestFailedCommandReleasesStore(t *testing.T) {
	fileEnv(t)
	t.Setenv("KB_LOG_FILE", filepath.Join(t.TempDir(), "kbrowse.log"))

	for _, args := range [][]string{
		{"list", "--window", "fortnight"},
		{"seed", "--file", filepath.Join(t.TempDir(), "missing.yaml")},
		{"add", "--title", "  "},
		{"list", "--now", "someday"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			a := &app{}
			cmd := newRootCmd(a)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(args)

			require.Error(t, cmd.Execute())
			assert.Nil(t, a.store)
			assert.Nil(t, a.logger)
			assert.NoError(t, a.stop())
		})
	}

	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
	assert.Nil(t, a.store)
}
