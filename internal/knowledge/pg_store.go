package knowledge

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"kbrowse/internal/logging"
)

// Connection pool defaults
const (
	DefaultMaxConns     = 10
	DefaultIdleConns    = 5
	DefaultConnLifetime = 3600
)

// Schema objects for the knowledge item table
const (
	TableItem          = "kb_item"
	TableSchemaVersion = "kb_schema_version"

	// Schema version
	CurrentSchemaVersion = 2
)

// PgConfig holds PostgreSQL configuration options
type PgConfig struct {
	CrudConnStr  string
	DdlConnStr   string
	MaxConns     int
	IdleConns    int
	ConnLifetime time.Duration
	AccountID    string
}

// PgStore implements Store interface using PostgreSQL
type PgStore struct {
	config      PgConfig
	crudDB      *sql.DB
	ddlDB       *sql.DB
	accountID   string
	initialized bool
	now         func() time.Time
	logger      *logging.Logger
	mu          sync.RWMutex
}

// NewPgStore creates a new PostgreSQL knowledge store
func NewPgStore(config PgConfig) (*PgStore, error) {
	if config.AccountID == "" {
		return nil, errors.New("account ID cannot be empty")
	}

	accID, err := uuid.Parse(config.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account ID format: %w", err)
	}
	if accID == uuid.Nil {
		return nil, errors.New("account ID cannot be nil UUID")
	}

	if config.MaxConns <= 0 {
		config.MaxConns = DefaultMaxConns
	}
	if config.IdleConns <= 0 {
		config.IdleConns = DefaultIdleConns
	}
	if config.ConnLifetime <= 0 {
		config.ConnLifetime = DefaultConnLifetime * time.Second
	}

	if config.CrudConnStr == "" {
		return nil, errors.New("CRUD connection string cannot be empty")
	}
	if config.DdlConnStr == "" {
		// A single role may own the schema and the data
		config.DdlConnStr = config.CrudConnStr
	}

	store := &PgStore{
		config:    config,
		accountID: accID.String(),
		now:       time.Now,
		logger:    logging.Get(),
	}
	return store, nil
}

func (p *PgStore) openDB(connStr, name string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database connection: %w", name, err)
	}

	db.SetMaxOpenConns(p.config.MaxConns)
	db.SetMaxIdleConns(p.config.IdleConns)
	db.SetConnMaxLifetime(p.config.ConnLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", name, err)
	}
	return db, nil
}

// Open initializes connections to PostgreSQL and runs migrations if needed
func (p *PgStore) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	crudDB, err := p.openDB(p.config.CrudConnStr, "CRUD")
	if err != nil {
		return err
	}

	ddlDB, err := p.openDB(p.config.DdlConnStr, "DDL")
	if err != nil {
		crudDB.Close()
		return err
	}

	p.crudDB = crudDB
	p.ddlDB = ddlDB

	if err := p.runMigrations(); err != nil {
		crudDB.Close()
		ddlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := p.validateSchema(); err != nil {
		crudDB.Close()
		ddlDB.Close()
		return err
	}

	p.initialized = true
	p.logger.Info("PostgreSQL knowledge store opened", "account_id", p.accountID)
	return nil
}

// Close closes database connections
func (p *PgStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	if p.crudDB != nil {
		if err := p.crudDB.Close(); err != nil {
			return fmt.Errorf("error closing CRUD database connection: %w", err)
		}
		p.crudDB = nil
	}

	if p.ddlDB != nil {
		if err := p.ddlDB.Close(); err != nil {
			return fmt.Errorf("error closing DDL database connection: %w", err)
		}
		p.ddlDB = nil
	}

	p.initialized = false
	return nil
}

// Flush is a no-op for PostgreSQL store since all operations are immediate
func (p *PgStore) Flush() error {
	return nil
}

// Info provides implementation-specific information about the PostgreSQL knowledge store
func (p *PgStore) Info() (map[string]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return nil, ErrStoreClosed
	}

	info := make(map[string]string)
	info["implementation"] = "PostgreSQLStore"
	info["account_id"] = p.accountID
	info["persistent"] = "true"

	var itemCount int
	err := p.crudDB.QueryRow("SELECT COUNT(*) FROM "+TableItem+" WHERE account_id = $1",
		p.accountID).Scan(&itemCount)
	if err != nil {
		info["item_count"] = "error"
	} else {
		info["item_count"] = fmt.Sprintf("%d", itemCount)
	}

	var archivedCount int
	err = p.crudDB.QueryRow("SELECT COUNT(*) FROM "+TableItem+" WHERE account_id = $1 AND archived_at IS NOT NULL",
		p.accountID).Scan(&archivedCount)
	if err != nil {
		info["archived_count"] = "error"
	} else {
		info["archived_count"] = fmt.Sprintf("%d", archivedCount)
	}

	return info, nil
}
