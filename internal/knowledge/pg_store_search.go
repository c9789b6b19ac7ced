package knowledge

import (
	"fmt"
)

// collectionClause maps a collection to its WHERE predicate
func collectionClause(collection Collection) (string, error) {
	switch collection {
	case CollectionAll:
		return "archived_at IS NULL", nil
	case CollectionFavorites:
		return "favorite AND archived_at IS NULL", nil
	case CollectionRecent:
		return "last_visited_at IS NOT NULL", nil
	case CollectionArchive:
		return "archived_at IS NOT NULL", nil
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}

// buildListQuery returns the SELECT for a collection, ordered by storage position
func buildListQuery(collection Collection) (string, error) {
	clause, err := collectionClause(collection)
	if err != nil {
		return "", err
	}
	return `
		SELECT` + itemColumns + `
		FROM ` + TableItem + `
		WHERE account_id = $1 AND ` + clause + `
		ORDER BY seq ASC
	`, nil
}

// ListItems returns the items of a collection in storage order
func (p *PgStore) ListItems(collection Collection) ([]Item, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return nil, ErrStoreClosed
	}

	query, err := buildListQuery(collection)
	if err != nil {
		return nil, err
	}

	rows, err := p.crudDB.Query(query, p.accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list query: %w", err)
	}
	defer rows.Close()

	results := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list result: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list results: %w", err)
	}

	return results, nil
}
