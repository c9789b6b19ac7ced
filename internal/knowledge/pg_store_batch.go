package knowledge

import (
	"fmt"
)

// LoadItems loads multiple items into the store in one transaction
// If an item with the same ID exists, it's updated; otherwise, it's added
func (p *PgStore) LoadItems(items ...Item) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return ErrStoreClosed
	}
	if len(items) == 0 {
		return nil
	}

	// Validate the whole batch before touching the database
	seenIDs := make(map[string]bool)
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item at index %d must have an ID", i)
		}
		if seenIDs[item.ID] {
			return fmt.Errorf("duplicate item ID found in input: %s", item.ID)
		}
		seenIDs[item.ID] = true
	}

	tx, err := p.crudDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := p.now()
	for _, item := range items {
		var exists bool
		exists, err = p.itemExists(tx, item.ID)
		if err != nil {
			return err
		}

		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = now
		}

		if exists {
			if _, err = tx.Exec(sqlUpdateItem, updateArgs(p.accountID, item)...); err != nil {
				return fmt.Errorf("failed to update item %s: %w", item.ID, err)
			}
			continue
		}

		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if _, err = tx.Exec(sqlInsertItem, insertArgs(p.accountID, item)...); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.logger.Debug("Loaded items into PostgreSQL store", "count", len(items))
	return nil
}
