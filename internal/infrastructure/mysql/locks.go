package mysql

import (
	"context"
	"fmt"
	"sort"
)

// LockTables takes the per-table row lock for every table number, creating
// the lock row on first use. Numbers are deduplicated and locked in ascending
// order so that two callers never wait on each other in a cycle. Must run
// inside Transact.
func LockTables(ctx context.Context, ext Executor, tables ...uint) error {
	sorted := make([]uint, 0, len(tables))
	seen := make(map[uint]struct{}, len(tables))
	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// ON DUPLICATE KEY UPDATE takes an exclusive lock on an existing row,
	// so there is no shared-then-exclusive upgrade.
	query := `
		INSERT INTO table_locks (table_number) VALUES (?)
		ON DUPLICATE KEY UPDATE table_number = table_number`

	for _, t := range sorted {
		if _, err := ext.ExecContext(ctx, query, t); err != nil {
			return fmt.Errorf("locking table %d: %w", t, err)
		}
	}
	return nil
}

// LockAllTables locks every known table row, used by shift closure.
func LockAllTables(ctx context.Context, ext Executor) error {
	var tables []uint
	if err := ext.SelectContext(ctx, &tables,
		`SELECT table_number FROM table_locks ORDER BY table_number FOR UPDATE`); err != nil {
		return fmt.Errorf("locking all tables: %w", err)
	}
	return nil
}
