package sqlite

import (
	"context"
	"fmt"
)

// nextID returns the next prefixed sequential ID for table, e.g. CHAR-004.
// IDs are PREFIX-NNN; the numeric part starts after the dash.
func nextID(ctx context.Context, db DBTX, table, prefix string) (string, error) {
	var maxID int
	query := fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", len(prefix)+2, table)
	if err := db.QueryRowContext(ctx, query).Scan(&maxID); err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}
