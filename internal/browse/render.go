package browse

import (
	"fmt"
	"strings"
	"time"

	"kbrowse/internal/knowledge"
	"kbrowse/internal/listing"
)

const dateLayout = "2006-01-02 15:04"

// render shows the current listing, or the error it produced
func (s *Session) render() string {
	out, err := s.tryRender()
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	return out
}

func (s *Session) tryRender() (string, error) {
	result, err := s.runtime.Browse(s.listing, s.query)
	if err != nil {
		return "", err
	}
	return Format(s.listing, s.query, result, s.runtime.Now().Location()), nil
}

// Format renders a listing result: a header line, one line per item and the
// tag counts of indexed listings. Times are shown in loc.
func Format(l listing.Listing, q listing.Query, result listing.Result, loc *time.Location) string {
	var sb strings.Builder

	header := []string{l.Name, "sort: " + sortName(l, result.Sort)}
	if l.SupportsWindow() {
		header = append(header, "window: "+q.Window.String())
	}
	if q.Term != "" {
		header = append(header, fmt.Sprintf("search: %q", q.Term))
	}
	if q.Tag != "" {
		header = append(header, "tag: "+q.Tag)
	}
	sb.WriteString("== " + strings.Join(header, " | ") + " ==\n")

	// The tags page lists items only once a tag is picked
	if l.Name != "tags" || q.Tag != "" {
		field := dateField(l, result.Sort)
		for i, item := range result.Items {
			fmt.Fprintf(&sb, "%3d. [%s] %s", i+1, item.ID, item.Title)
			if len(item.Tags) > 0 {
				fmt.Fprintf(&sb, "  #%s", strings.Join(item.Tags, " #"))
			}
			fmt.Fprintf(&sb, "  %s %s\n", field, formatTime(field.Time(item), loc))
		}
		switch len(result.Items) {
		case 0:
			sb.WriteString("No items\n")
		case 1:
			sb.WriteString("1 item\n")
		default:
			fmt.Fprintf(&sb, "%d items\n", len(result.Items))
		}
	}

	if l.Index != nil {
		counts := make([]string, 0, len(result.Vocabulary))
		for _, tag := range result.Vocabulary {
			counts = append(counts, fmt.Sprintf("%s (%d)", tag, result.Tags.Counts[tag]))
		}
		if len(counts) == 0 {
			sb.WriteString("Tags: none\n")
		} else {
			sb.WriteString("Tags: " + strings.Join(counts, ", ") + "\n")
		}
	}
	return sb.String()
}

// sortName prefers the option name the listing advertises for s
func sortName(l listing.Listing, s listing.Sort) string {
	for _, opt := range l.SortOptions {
		if opt.Sort == s {
			return opt.Name
		}
	}
	return s.String()
}

// dateField picks the timestamp shown next to each item
func dateField(l listing.Listing, s listing.Sort) listing.Field {
	if f, ok := s.Key.Field(); ok && f.IsTimestamp() {
		return f
	}
	if l.WindowField != "" {
		return l.WindowField
	}
	return listing.FieldUpdatedAt
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format(dateLayout)
}

// renderItem shows a single item in full
func (s *Session) renderItem(item knowledge.Item) string {
	loc := s.runtime.Now().Location()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", item.ID, item.Title)
	if len(item.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(item.Tags, ", "))
	}
	fmt.Fprintf(&sb, "Created: %s  Updated: %s", formatTime(item.CreatedAt, loc), formatTime(item.UpdatedAt, loc))
	if item.Archived() {
		fmt.Fprintf(&sb, "  Archived: %s", formatTime(item.ArchivedAt, loc))
	}
	if item.Favorite {
		sb.WriteString("  Favorite")
	}
	sb.WriteString("\n\n")
	sb.WriteString(item.Body)
	sb.WriteString("\n")
	return sb.String()
}
