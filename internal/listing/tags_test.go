package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kbrowse/internal/knowledge"
)

func TestExtractAllTags(t *testing.T) {
	items := []knowledge.Item{
		{ID: "1", Tags: []string{"go", "Go", "db"}},
		{ID: "2", Tags: []string{"api", "go"}},
		{ID: "3"},
	}

	assert.Equal(t, []string{"Go", "api", "db", "go"}, ExtractAllTags(items))
	assert.Empty(t, ExtractAllTags(nil))
}

func TestCalculateTagCounts(t *testing.T) {
	items := []knowledge.Item{
		{ID: "1", Tags: []string{"go", "go", "db"}},
		{ID: "2", Tags: []string{"go"}},
	}

	assert.Equal(t, map[string]int{"go": 2, "db": 1}, CalculateTagCounts(items))
}

func TestFilterTags(t *testing.T) {
	tags := []string{"Database", "frontend", "go"}

	assert.Equal(t, []string{"Database"}, FilterTags(tags, "data"))
	assert.Equal(t, tags, FilterTags(tags, ""))
	assert.Empty(t, FilterTags(tags, "rust"))
}
