package browse

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kbrowse/internal/knowledge"
	"kbrowse/internal/listing"
)

// registerCommands registers the session commands
func (s *Session) registerCommands() {
	s.add(Command{
		Name:        "help",
		Usage:       "help",
		Description: "Show available commands",
		Handler: func(string) (string, error) {
			names := make([]string, 0, len(s.commands))
			for name := range s.commands {
				names = append(names, name)
			}
			sort.Strings(names)

			var sb strings.Builder
			sb.WriteString("Available commands:\n")
			for _, name := range names {
				cmd := s.commands[name]
				fmt.Fprintf(&sb, "  %-18s %s\n", cmd.Usage, cmd.Description)
			}
			fmt.Fprintf(&sb, "  %-18s %s\n", "exit", "Leave the browser")
			return sb.String(), nil
		},
	})

	s.add(Command{
		Name:        "list",
		Usage:       "list <listing>",
		Description: "Switch to " + strings.Join(listing.Names(), ", "),
		Handler: func(arg string) (string, error) {
			if arg == "" {
				var err error
				if arg, err = s.choose("Listing", listing.Names(), "list <listing>"); err != nil {
					return "", err
				}
			}
			l, err := listing.Lookup(arg)
			if err != nil {
				return "", err
			}

			prev, prevQuery := s.listing, s.query
			s.listing, s.query = l, listing.Query{}
			out, err := s.tryRender()
			if err != nil {
				s.listing, s.query = prev, prevQuery
			}
			return out, err
		},
	})

	s.add(Command{
		Name:        "search",
		Usage:       "search [term]",
		Description: "Filter by text, no term clears the filter",
		Handler: func(arg string) (string, error) {
			return s.apply(func(q *listing.Query) error {
				q.Term = arg
				return nil
			})
		},
	})

	s.add(Command{
		Name:        "tag",
		Usage:       "tag <tag>|-",
		Description: "Filter by exact tag, - clears the filter",
		Handler: func(arg string) (string, error) {
			return s.apply(func(q *listing.Query) error {
				if arg == "-" {
					arg = ""
				}
				q.Tag = arg
				return nil
			})
		},
	})

	s.add(Command{
		Name:        "sort",
		Usage:       "sort <option>",
		Description: "Order the listing, e.g. alphabetical or \"createdAt asc\"",
		Handler: func(arg string) (string, error) {
			if arg == "" {
				names := make([]string, 0, len(s.listing.SortOptions))
				for _, opt := range s.listing.SortOptions {
					names = append(names, opt.Name)
				}
				var err error
				if arg, err = s.choose("Sort by", names, "sort <option>"); err != nil {
					return "", err
				}
			}
			return s.apply(func(q *listing.Query) error {
				sorting, err := s.listing.ParseSort(arg)
				if err != nil {
					return err
				}
				q.Sort = sorting
				return nil
			})
		},
	})

	s.add(Command{
		Name:        "window",
		Usage:       "window <range>",
		Description: "Limit by time: all, today, week, month or Nd",
		Handler: func(arg string) (string, error) {
			return s.apply(func(q *listing.Query) error {
				w, err := listing.ParseWindow(arg)
				if err != nil {
					return err
				}
				q.Window = w
				return nil
			})
		},
	})

	s.add(Command{
		Name:        "tags",
		Usage:       "tags",
		Description: "Show the tag vocabulary with item counts",
		Handler: func(string) (string, error) {
			result, err := s.runtime.Browse(listing.Tags(), listing.Query{Term: s.query.Term})
			if err != nil {
				return "", err
			}
			if len(result.Vocabulary) == 0 {
				return "No tags\n", nil
			}
			var sb strings.Builder
			for _, tag := range result.Vocabulary {
				fmt.Fprintf(&sb, "  %s (%d)\n", tag, result.Tags.Counts[tag])
			}
			return sb.String(), nil
		},
	})

	s.add(Command{
		Name:        "open",
		Usage:       "open <id>",
		Description: "Show an item and record the visit",
		Handler: s.withID(func(id string) (string, error) {
			item, err := s.runtime.Open(id)
			if err != nil {
				return "", err
			}
			return s.renderItem(item), nil
		}),
	})

	s.add(s.mutation("fav", "Add an item to favorites", func(id string) (string, error) {
		return fmt.Sprintf("Added %s to favorites\n", id), s.store().SetFavorite(id, true)
	}))
	s.add(s.mutation("unfav", "Remove an item from favorites", func(id string) (string, error) {
		return fmt.Sprintf("Removed %s from favorites\n", id), s.store().SetFavorite(id, false)
	}))
	s.add(s.mutation("archive", "Move an item to the archive", func(id string) (string, error) {
		return fmt.Sprintf("Archived %s\n", id), s.runtime.Archive(id)
	}))
	s.add(s.mutation("restore", "Take an item out of the archive", func(id string) (string, error) {
		return fmt.Sprintf("Restored %s\n", id), s.store().RestoreItem(id)
	}))
	s.add(s.mutation("forget", "Remove an item from the history", func(id string) (string, error) {
		return fmt.Sprintf("Removed %s from history\n", id), s.store().TouchItem(id, time.Time{})
	}))

	s.add(Command{
		Name:        "clear",
		Usage:       "clear",
		Description: "Clear the visit history",
		Handler: func(string) (string, error) {
			if err := s.store().ClearVisits(); err != nil {
				return "", err
			}
			return s.afterMutation("History cleared\n")
		},
	})
}

func (s *Session) add(cmd Command) {
	s.commands[cmd.Name] = cmd
}

func (s *Session) store() knowledge.Store {
	store, _ := s.runtime.GetStore()
	return store
}

// withID rejects a missing item ID before calling fn
func (s *Session) withID(fn func(id string) (string, error)) func(string) (string, error) {
	return func(arg string) (string, error) {
		if arg == "" {
			return "", errors.New("missing item ID")
		}
		return fn(arg)
	}
}

// mutation builds an "<name> <id>" command that changes the store and re-renders
func (s *Session) mutation(name, description string, fn func(id string) (string, error)) Command {
	return Command{
		Name:        name,
		Usage:       name + " <id>",
		Description: description,
		Handler: s.withID(func(id string) (string, error) {
			msg, err := fn(id)
			if err != nil {
				return "", err
			}
			return s.afterMutation(msg)
		}),
	}
}

func (s *Session) afterMutation(msg string) (string, error) {
	if err := s.runtime.Flush(); err != nil {
		return "", err
	}
	out, err := s.tryRender()
	if err != nil {
		return "", err
	}
	return msg + out, nil
}

// apply changes a copy of the query and keeps it only if the listing accepts it
func (s *Session) apply(change func(q *listing.Query) error) (string, error) {
	prev := s.query
	if err := change(&s.query); err != nil {
		s.query = prev
		return "", err
	}
	out, err := s.tryRender()
	if err != nil {
		s.query = prev
		return "", err
	}
	return out, nil
}
