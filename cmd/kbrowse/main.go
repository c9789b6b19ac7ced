package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kbrowse/internal/browse"
	"kbrowse/internal/common"
	"kbrowse/internal/config"
	"kbrowse/internal/knowledge"
	"kbrowse/internal/listing"
	"kbrowse/internal/logging"
)

// app holds what the subcommands share once the root command has loaded the configuration
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	store   knowledge.Store
	runtime *common.RuntimeContext
	nowFlag string
}

// NewRootCmd builds the kbrowse command tree. Configuration is read from KB_
// environment variables when a subcommand runs.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kbrowse",
		Short:         "Browse, search and curate a knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.stop()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.nowFlag, "now", "", "Reference time for time windows, e.g. \"2024-01-25 18:00\"")

	rootCmd.AddCommand(
		a.listCmd(),
		a.tagsCmd(),
		a.browseCmd(),
		a.seedCmd(),
		a.addCmd(),
	)
	// Cobra skips the post-run hooks when RunE fails
	for _, sub := range rootCmd.Commands() {
		sub.RunE = a.stopOnError(sub.RunE)
	}
	return rootCmd
}

func (a *app) stopOnError(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			_ = a.stop()
		}
		return err
	}
}

func (a *app) start() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = cfg.NewLogger()
	logging.Init(a.logger)

	clock := time.Now
	if a.nowFlag != "" {
		now, err := knowledge.ParseTimestamp(a.nowFlag, time.Local)
		if err != nil {
			_ = a.stop()
			return fmt.Errorf("invalid --now: %w", err)
		}
		clock = func() time.Time { return now }
	}

	store, err := cfg.OpenStore()
	if err != nil {
		a.logger.Error("Failed to open store", "store", cfg.Store, "error", err)
		_ = a.stop()
		return err
	}
	a.store = store

	a.runtime, err = common.NewRuntimeContext(common.RuntimeOptions{
		Store:  store,
		Engine: listing.NewEngine(listing.WithLanguage(cfg.Language())),
		Logger: a.logger,
		Clock:  clock,
	})
	if err != nil {
		_ = a.stop()
		return err
	}

	a.logger.Debug("kbrowse started", "store", cfg.Store, "locale", cfg.Language().String())
	return nil
}

// stop closes the store and the logger. It is safe to call more than once.
func (a *app) stop() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Failed to close store", "error", err)
			errs = append(errs, err)
		}
		a.store = nil
	}
	if a.logger != nil {
		logger := a.logger
		a.logger = nil
		errs = append(errs, logger.Close())
	}
	return errors.Join(errs...)
}

func (a *app) listCmd() *cobra.Command {
	var name, term, tag, sortName, window string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := listing.Lookup(name)
			if err != nil {
				return err
			}
			q := listing.Query{Term: term, Tag: tag}
			if q.Sort, err = l.ParseSort(sortName); err != nil {
				return err
			}
			if q.Window, err = listing.ParseWindow(window); err != nil {
				return err
			}

			result, err := a.runtime.Browse(l, q)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), browse.Format(l, q, result, a.runtime.Now().Location()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "listing", "l", "home", "Listing: "+strings.Join(listing.Names(), ", "))
	cmd.Flags().StringVarP(&term, "term", "q", "", "Search term")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Exact tag filter")
	cmd.Flags().StringVarP(&sortName, "sort", "s", "", "Sort option or \"key asc|desc\"")
	cmd.Flags().StringVarP(&window, "window", "w", "all", "Time window: all, today, week, month or Nd")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Print the tag vocabulary with item counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.runtime.Browse(listing.Tags(), listing.Query{Term: term})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tag := range result.Vocabulary {
				fmt.Fprintf(out, "%s\t%d\n", tag, result.Tags.Counts[tag])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&term, "term", "q", "", "Only tags containing the term")
	return cmd
}

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Start the interactive browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := browse.NewSession(a.runtime)
			return session.StartWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample items, or items from a YAML file, into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				items []knowledge.Item
				err   error
			)
			if file == "" {
				items, err = knowledge.DefaultSeed(time.Local)
			} else {
				items, err = loadSeedFile(file)
			}
			if err != nil {
				return err
			}

			if err := a.store.LoadItems(items...); err != nil {
				return fmt.Errorf("failed to load items: %w", err)
			}
			if err := a.store.Flush(); err != nil {
				return err
			}
			a.logger.Info("Seed loaded", "items", len(items), "store", a.cfg.Store)
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d items\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with an items list")
	return cmd
}

func loadSeedFile(path string) ([]knowledge.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return knowledge.LoadSeed(f, time.Local)
}

func (a *app) addCmd() *cobra.Command {
	var title, body string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title cannot be empty")
			}

			now := a.runtime.Now()
			item := knowledge.Item{
				ID:        uuid.New().String(),
				Title:     title,
				Body:      body,
				Tags:      tags,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := a.store.AddItem(item); err != nil {
				return err
			}
			if err := a.store.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", item.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Item title (required)")
	cmd.Flags().StringVar(&body, "body", "", "Item body")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Tag, may be repeated")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
