package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"kbrowse/internal/knowledge"
	"kbrowse/internal/logging"
)

// Prefix of every environment variable read by New, e.g. KB_STORE
const Prefix = "KB"

// Store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds the runtime configuration of kbrowse
type Config struct {
	// Record store: memory, file or postgres
	Store string `envconfig:"STORE" default:"memory"`
	File  string `envconfig:"FILE" default:"./data/knowledge.json"`

	// PostgreSQL store
	PgCrudConnStr  string        `envconfig:"PG_CRUD_CN" default:""`
	PgDdlConnStr   string        `envconfig:"PG_DDL_CN" default:""`
	PgMaxConns     int           `envconfig:"PG_MAX_CONNS" default:"10"`
	PgIdleConns    int           `envconfig:"PG_IDLE_CONNS" default:"5"`
	PgConnLifetime time.Duration `envconfig:"PG_CONN_LIFETIME" default:"1h"`
	AccountID      string        `envconfig:"ACCOUNT_ID" default:""`

	// Logging, an empty file logs to stderr
	LogFile  string `envconfig:"LOG_FILE" default:""`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// BCP 47 tag used to collate titles
	Locale string `envconfig:"LOCALE" default:"und"`

	// Load the sample knowledge base into an empty memory store
	Seed bool `envconfig:"SEED" default:"true"`

	level logging.LogLevel
	lang  language.Tag
}

// New creates a new Config by parsing KB_ prefixed environment variables
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting returns an in-memory configuration that logs nowhere and loads no seed
func NewForTesting() *Config {
	cfg := &Config{
		Store:    StoreMemory,
		LogLevel: "error",
		Locale:   "und",
	}
	if err := cfg.ResolveDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// ResolveDefaults normalizes the store name and checks the settings it needs
func (c *Config) ResolveDefaults() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = StoreMemory
	}

	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.File == "" {
			return fmt.Errorf("%s_FILE is required for the file store", Prefix)
		}
	case StorePostgres:
		if c.PgCrudConnStr == "" {
			return fmt.Errorf("%s_PG_CRUD_CN is required for the postgres store", Prefix)
		}
		if c.AccountID == "" {
			return fmt.Errorf("%s_ACCOUNT_ID is required for the postgres store", Prefix)
		}
	default:
		return fmt.Errorf("unsupported %s_STORE: %s", Prefix, c.Store)
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid %s_LOG_LEVEL: %w", Prefix, err)
	}
	c.level = level

	if c.Locale == "" {
		c.Locale = "und"
	}
	lang, err := language.Parse(c.Locale)
	if err != nil {
		return fmt.Errorf("invalid %s_LOCALE: %w", Prefix, err)
	}
	c.lang = lang
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() logging.LogLevel {
	return c.level
}

// Language returns the parsed collation language
func (c *Config) Language() language.Tag {
	return c.lang
}

// PgConfig returns the PostgreSQL store settings
func (c *Config) PgConfig() knowledge.PgConfig {
	return knowledge.PgConfig{
		CrudConnStr:  c.PgCrudConnStr,
		DdlConnStr:   c.PgDdlConnStr,
		MaxConns:     c.PgMaxConns,
		IdleConns:    c.PgIdleConns,
		ConnLifetime: c.PgConnLifetime,
		AccountID:    c.AccountID,
	}
}

// NewLogger creates the logger described by LogFile and LogLevel
func (c *Config) NewLogger() *logging.Logger {
	if c.LogFile == "" {
		return logging.Console(c.level)
	}
	return logging.File(c.LogFile, true, c.level)
}

// OpenStore creates and opens the configured store. An empty memory store is
// seeded with the sample knowledge base when Seed is set.
func (c *Config) OpenStore() (knowledge.Store, error) {
	var (
		store knowledge.Store
		err   error
	)

	switch c.Store {
	case StoreFile:
		store, err = knowledge.NewFileStore(c.File)
	case StorePostgres:
		store, err = knowledge.NewPgStore(c.PgConfig())
	default:
		store, err = knowledge.NewMemoryStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", c.Store, err)
	}

	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.Store, err)
	}

	if c.Store == StoreMemory && c.Seed {
		items, err := knowledge.DefaultSeed(time.Local)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := store.LoadItems(items...); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
	}
	return store, nil
}
