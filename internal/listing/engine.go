package listing

import (
	"time"

	"golang.org/x/text/language"

	"kbrowse/internal/knowledge"
)

// Query is one immutable request against a listing
type Query struct {
	Term   string     // Free-text search, empty means no text filter
	Tag    string     // Exact tag filter, empty means no tag filter
	Sort   Sort       // Zero means the listing's default sort
	Window TimeWindow // Applied to the listing's designated timestamp
	Now    time.Time  // Reference instant for windows, its location is the viewer's zone
}

// Result is the ordered subset of matching records and, for indexed listings,
// the tag index of the whole input collection
type Result struct {
	Items      []knowledge.Item
	Tags       TagIndex
	Vocabulary []string // Index tags narrowed by the query term
	Sort       Sort     // The sort that was applied
}

// Engine runs queries. The zero value collates titles with the root locale.
type Engine struct {
	lang language.Tag
}

// Option configures an Engine
type Option func(*Engine)

// WithLanguage sets the collation language for title ordering
func WithLanguage(tag language.Tag) Option {
	return func(e *Engine) {
		e.lang = tag
	}
}

// NewEngine creates an engine, collating titles with the root locale by default
func NewEngine(opts ...Option) *Engine {
	e := &Engine{lang: language.Und}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Run executes q against items with the default engine
func Run(l Listing, items []knowledge.Item, q Query) (Result, error) {
	return defaultEngine.Run(l, items, q)
}

// Run filters items by term, tag and time window, orders the survivors and
// builds the listing's tag index. items is never modified.
func (e *Engine) Run(l Listing, items []knowledge.Item, q Query) (Result, error) {
	s, err := l.resolveSort(q.Sort)
	if err != nil {
		return Result{}, err
	}
	if err := l.checkWindow(q.Window); err != nil {
		return Result{}, err
	}

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	matcher := l.Matcher
	if matcher == nil {
		matcher = MatchesSearch
	}

	out := make([]knowledge.Item, 0, len(items))
	for _, item := range items {
		if !matcher(item, q.Term) {
			continue
		}
		if !HasTag(item, q.Tag) {
			continue
		}
		if q.Window.Bounded() && !q.Window.Contains(l.WindowField.Time(item), now) {
			continue
		}
		out = append(out, item)
	}

	result := Result{
		Items: sortItems(out, s, q.Term, e.lang),
		Sort:  s,
	}
	if l.Index != nil {
		result.Tags = l.Index(items)
		result.Vocabulary = FilterTags(result.Tags.Tags, q.Term)
	}
	return result, nil
}

// resolveSort applies the default and checks the key against the shape
func (l Listing) resolveSort(s Sort) (Sort, error) {
	if s.IsZero() {
		s = l.DefaultSort()
	}

	field, ok := s.Key.Field()
	if !ok {
		return Sort{}, invalidQuery("unknown sort key %q", s.Key)
	}
	if !l.Shape.Has(field) {
		return Sort{}, invalidQuery("listing %s has no %s field to sort by", l.Name, field)
	}
	switch s.Dir {
	case "", Ascending, Descending:
	default:
		return Sort{}, invalidQuery("unknown sort direction %q", s.Dir)
	}
	return s, nil
}

func (l Listing) checkWindow(w TimeWindow) error {
	if err := w.validate(); err != nil {
		return err
	}
	if w.Bounded() && (l.WindowField == "" || !l.Shape.Has(l.WindowField)) {
		return invalidQuery("listing %s does not support time windows", l.Name)
	}
	return nil
}
