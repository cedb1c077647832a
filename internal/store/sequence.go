package store

import (
	"context"
	"database/sql"
	"fmt"
)

// nextSequence bumps the named counter and returns its new value, starting
// at 1. Event pages are keyed on these numbers rather than on row ids,
// which SQLite may reuse after a prune.
func nextSequence(ctx context.Context, db *sql.DB, name string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = value + 1
		RETURNING value`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("bump %s counter: %w", name, err)
	}
	return n, nil
}
