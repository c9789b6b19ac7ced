package common

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"kbrowse/internal/knowledge"
	"kbrowse/internal/listing"
	"kbrowse/internal/logging"
)

// RuntimeContext ties the record store to the listing engine for the shells
type RuntimeContext struct {
	_ops    RuntimeOptions
	_store  knowledge.Store
	_engine *listing.Engine
	_logger *logging.Logger
	_now    func() time.Time
	_sync   *sync.Mutex
}

type RuntimeOptions struct {
	Store    knowledge.Store
	Engine   *listing.Engine
	Logger   *logging.Logger
	Clock    func() time.Time // Defaults to time.Now
	Location *time.Location   // Viewer's zone for time windows, defaults to time.Local
}

func NewRuntimeContext(opt RuntimeOptions) (*RuntimeContext, error) {
	if opt.Store == nil {
		return nil, errors.New("runtime context needs a store")
	}

	rv := new(RuntimeContext)
	rv._sync = new(sync.Mutex)
	rv._ops = opt
	rv._store = opt.Store

	rv._engine = opt.Engine
	if rv._engine == nil {
		rv._engine = listing.NewEngine()
	}
	rv._logger = opt.Logger
	if rv._logger == nil {
		rv._logger = logging.Get()
	}

	clock := opt.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := opt.Location
	if loc == nil {
		loc = time.Local
	}
	rv._now = func() time.Time { return clock().In(loc) }

	return rv, nil
}

func (r *RuntimeContext) GetStore() (knowledge.Store, error) {
	r._sync.Lock()
	defer r._sync.Unlock()

	return r._store, nil
}

func (r *RuntimeContext) SetStore(s knowledge.Store) error {
	if s == nil {
		return errors.New("store cannot be nil")
	}

	r._sync.Lock()
	defer r._sync.Unlock()

	r._store = s
	return nil
}

func (r *RuntimeContext) Logger() *logging.Logger {
	return r._logger
}

// Now returns the current instant in the viewer's zone
func (r *RuntimeContext) Now() time.Time {
	return r._now()
}

// Browse loads the listing's collection from the store and runs q against it.
// A zero q.Now is replaced by the runtime clock.
func (r *RuntimeContext) Browse(l listing.Listing, q listing.Query) (listing.Result, error) {
	store, _ := r.GetStore()

	items, err := store.ListItems(l.Collection)
	if err != nil {
		return listing.Result{}, fmt.Errorf("failed to load %s collection: %w", l.Collection, err)
	}

	if q.Now.IsZero() {
		q.Now = r.Now()
	}
	result, err := r._engine.Run(l, items, q)
	if err != nil {
		return listing.Result{}, err
	}

	r._logger.Debug("Listing rendered", "listing", l.Name, "items", len(result.Items), "sort", result.Sort.String())
	return result, nil
}

// Open records a visit and returns the item
func (r *RuntimeContext) Open(id string) (knowledge.Item, error) {
	store, _ := r.GetStore()

	if err := store.TouchItem(id, r.Now()); err != nil {
		return knowledge.Item{}, err
	}
	return store.GetItem(id)
}

// Archive moves an item to the archive
func (r *RuntimeContext) Archive(id string) error {
	store, _ := r.GetStore()
	return store.ArchiveItem(id, r.Now())
}

// Flush writes pending store changes
func (r *RuntimeContext) Flush() error {
	store, _ := r.GetStore()
	if err := store.Flush(); err != nil {
		r._logger.Error("Failed to flush store", "error", err)
		return err
	}
	return nil
}
