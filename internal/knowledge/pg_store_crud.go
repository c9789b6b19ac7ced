package knowledge

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQL queries for CRUD operations
const (
	itemColumns = `
			id, title, body, tags, created_at, updated_at,
			archived_at, last_visited_at, favorite`

	sqlInsertItem = `
		INSERT INTO kb_item (
			id, account_id, title, body, tags, created_at, updated_at,
			archived_at, last_visited_at, favorite
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	sqlGetItem = `
		SELECT` + itemColumns + `
		FROM kb_item
		WHERE id = $1 AND account_id = $2
	`

	sqlUpdateItem = `
		UPDATE kb_item
		SET
			title = $3,
			body = $4,
			tags = $5,
			updated_at = $6,
			archived_at = $7,
			last_visited_at = $8,
			favorite = $9
		WHERE id = $1 AND account_id = $2
	`

	sqlArchiveItem = `
		UPDATE kb_item
		SET archived_at = $3
		WHERE id = $1 AND account_id = $2 AND archived_at IS NULL
	`

	sqlRestoreItem = `
		UPDATE kb_item
		SET archived_at = NULL
		WHERE id = $1 AND account_id = $2 AND archived_at IS NOT NULL
	`

	sqlSetFavorite = `
		UPDATE kb_item
		SET favorite = $3
		WHERE id = $1 AND account_id = $2
	`

	sqlTouchItem = `
		UPDATE kb_item
		SET last_visited_at = $3
		WHERE id = $1 AND account_id = $2
	`

	sqlClearVisits = `
		UPDATE kb_item
		SET last_visited_at = NULL
		WHERE account_id = $1 AND last_visited_at IS NOT NULL
	`

	sqlPurgeItem = `
		DELETE FROM kb_item
		WHERE id = $1 AND account_id = $2
	`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem reads one item in itemColumns order
func scanItem(row rowScanner) (Item, error) {
	var item Item
	var tags []string
	var archivedAt, lastVisitedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Body,
		pq.Array(&tags),
		&item.CreatedAt,
		&item.UpdatedAt,
		&archivedAt,
		&lastVisitedAt,
		&item.Favorite,
	)
	if err != nil {
		return Item{}, err
	}

	item.Tags = tags
	if archivedAt.Valid {
		item.ArchivedAt = archivedAt.Time
	}
	if lastVisitedAt.Valid {
		item.LastVisitedAt = lastVisitedAt.Time
	}
	return item, nil
}

// AddItem adds a new knowledge item
func (p *PgStore) AddItem(item Item) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ErrStoreClosed
	}
	if item.ID == "" {
		return errors.New("knowledge item must have an ID")
	}

	exists, err := p.itemExists(p.crudDB, item.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("knowledge item with ID %s: %w", item.ID, ErrItemExists)
	}

	now := p.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	if _, err := p.crudDB.Exec(sqlInsertItem, insertArgs(p.accountID, item)...); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// insertArgs returns the sqlInsertItem parameters for item
func insertArgs(accountID string, item Item) []interface{} {
	return []interface{}{
		item.ID,                           // $1
		accountID,                         // $2
		item.Title,                        // $3
		item.Body,                         // $4
		pq.Array(tagsOrEmpty(item.Tags)),  // $5
		item.CreatedAt,                    // $6
		item.UpdatedAt,                    // $7
		nullTimeValue(item.ArchivedAt),    // $8
		nullTimeValue(item.LastVisitedAt), // $9
		item.Favorite,                     // $10
	}
}

// GetItem retrieves a knowledge item by ID
func (p *PgStore) GetItem(id string) (Item, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return Item{}, ErrStoreClosed
	}

	item, err := scanItem(p.crudDB.QueryRow(sqlGetItem, id, p.accountID))
	if err == sql.ErrNoRows {
		return Item{}, fmt.Errorf("knowledge item with ID %s: %w", id, ErrItemNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// UpdateItem updates an existing knowledge item
func (p *PgStore) UpdateItem(item Item) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ErrStoreClosed
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = p.now()
	}

	result, err := p.crudDB.Exec(sqlUpdateItem, updateArgs(p.accountID, item)...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireAffected(result, item.ID, ErrItemNotFound)
}

// updateArgs returns the sqlUpdateItem parameters for item
func updateArgs(accountID string, item Item) []interface{} {
	return []interface{}{
		item.ID,                           // $1
		accountID,                         // $2
		item.Title,                        // $3
		item.Body,                         // $4
		pq.Array(tagsOrEmpty(item.Tags)),  // $5
		item.UpdatedAt,                    // $6
		nullTimeValue(item.ArchivedAt),    // $7
		nullTimeValue(item.LastVisitedAt), // $8
		item.Favorite,                     // $9
	}
}

// ArchiveItem marks an item as archived (soft delete)
func (p *PgStore) ArchiveItem(id string, at time.Time) error {
	return p.execItem(sqlArchiveItem, id, at)
}

// RestoreItem brings an archived item back
func (p *PgStore) RestoreItem(id string) error {
	return p.execItem(sqlRestoreItem, id)
}

// SetFavorite adds or removes an item from the favorites collection
func (p *PgStore) SetFavorite(id string, on bool) error {
	return p.execItem(sqlSetFavorite, id, on)
}

// TouchItem records a visit to an item, a zero time forgets it
func (p *PgStore) TouchItem(id string, at time.Time) error {
	return p.execItem(sqlTouchItem, id, nullTimeValue(at))
}

// PurgeItem permanently deletes an item
func (p *PgStore) PurgeItem(id string) error {
	return p.execItem(sqlPurgeItem, id)
}

// execItem runs a single-item statement taking (id, account_id, extra...)
func (p *PgStore) execItem(query, id string, extra ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ErrStoreClosed
	}

	args := append([]interface{}{id, p.accountID}, extra...)
	result, err := p.crudDB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to modify item %s: %w", id, err)
	}
	return requireAffected(result, id, ErrItemNotFound)
}

// ClearVisits forgets every recorded visit
func (p *PgStore) ClearVisits() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ErrStoreClosed
	}
	if _, err := p.crudDB.Exec(sqlClearVisits, p.accountID); err != nil {
		return fmt.Errorf("failed to clear visits: %w", err)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func (p *PgStore) itemExists(q queryer, id string) (bool, error) {
	var exists bool
	err := q.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM kb_item
			WHERE id = $1 AND account_id = $2
		)
	`, id, p.accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if item exists: %w", err)
	}
	return exists, nil
}

func requireAffected(result sql.Result, id string, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("knowledge item with ID %s: %w", id, notFound)
	}
	return nil
}

// Helper functions for nullable values

func nullTimeValue(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
