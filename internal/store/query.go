package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByCreated = "created_at"
	orderByTitle   = "product_title"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByCreated: "created_at DESC, id",
	orderByTitle:   "product_title ASC, id",
}

const defaultOrderBy = "created_at DESC, id"

const baseWatchersSelect = `SELECT id, email, product_url, product_title, created_at
FROM watchers`

const countWatchersSelect = "SELECT COUNT(*) FROM watchers"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a watcher query.
// It returns two SQL strings (one for the data query, one for the count query)
// and the positional parameters.
func (q *WatcherQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Email != nil {
		conditions = append(conditions, fmt.Sprintf("email = $%d", paramIdx))
		args = append(args, *q.Email)
		paramIdx++
	}

	if q.ProductURL != nil {
		conditions = append(conditions, fmt.Sprintf("product_url = $%d", paramIdx))
		args = append(args, *q.ProductURL)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	countSQL = countWatchersSelect + whereClause

	if q.Unbounded {
		dataSQL = fmt.Sprintf("%s%s ORDER BY %s", baseWatchersSelect, whereClause, orderClause)
		return dataSQL, countSQL, args
	}

	limit, offset := q.page()
	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseWatchersSelect, whereClause, orderClause, limit, offset,
	)

	return dataSQL, countSQL, args
}

// page returns the clamped limit and offset.
func (q *WatcherQuery) page() (limit, offset int) {
	limit = q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, max(q.Offset, 0)
}

// Page applies the query's clamped limit and offset to an already filtered,
// already ordered slice. Non-SQL stores use it so pagination behaves the same.
func Page[T any](q *WatcherQuery, items []T) []T {
	if q == nil || q.Unbounded {
		return items
	}
	limit, offset := q.page()
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
