package knowledge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed/items.yaml
var defaultSeed []byte

// Accepted timestamp layouts for seed files, most specific first
var seedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Body          string   `yaml:"body"`
	Tags          []string `yaml:"tags"`
	CreatedAt     string   `yaml:"created_at"`
	UpdatedAt     string   `yaml:"updated_at"`
	ArchivedAt    string   `yaml:"archived_at"`
	LastVisitedAt string   `yaml:"last_visited_at"`
	Favorite      bool     `yaml:"favorite"`
}

// LoadSeed parses a YAML item collection. Timestamps without a zone are read in loc.
func LoadSeed(r io.Reader, loc *time.Location) ([]Item, error) {
	if loc == nil {
		loc = time.Local
	}

	var sf seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	items := make([]Item, 0, len(sf.Items))
	for i, si := range sf.Items {
		item, err := si.toItem(loc)
		if err != nil {
			return nil, fmt.Errorf("seed item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// DefaultSeed returns the embedded sample knowledge base
func DefaultSeed(loc *time.Location) ([]Item, error) {
	return LoadSeed(bytes.NewReader(defaultSeed), loc)
}

func (si seedItem) toItem(loc *time.Location) (Item, error) {
	if si.ID == "" {
		return Item{}, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(si.Title) == "" {
		return Item{}, fmt.Errorf("item %s: missing title", si.ID)
	}

	item := Item{
		ID:       si.ID,
		Title:    si.Title,
		Body:     si.Body,
		Tags:     si.Tags,
		Favorite: si.Favorite,
	}

	fields := []struct {
		name  string
		value string
		dst   *time.Time
	}{
		{"created_at", si.CreatedAt, &item.CreatedAt},
		{"updated_at", si.UpdatedAt, &item.UpdatedAt},
		{"archived_at", si.ArchivedAt, &item.ArchivedAt},
		{"last_visited_at", si.LastVisitedAt, &item.LastVisitedAt},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		t, err := ParseTimestamp(f.value, loc)
		if err != nil {
			return Item{}, fmt.Errorf("item %s: %s: %w", si.ID, f.name, err)
		}
		*f.dst = t
	}
	return item, nil
}

// ParseTimestamp accepts a calendar date or a date-time in one of the seed layouts
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range seedTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
