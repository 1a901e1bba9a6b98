package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"comanda/internal/domain"
	"comanda/internal/infrastructure/mysql"
)

type outboxRow struct {
	ID        int64     `db:"id"`
	RecordID  string    `db:"record_id"`
	Content   []byte    `db:"content"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *MySQLSettlementRepository) CreateOutbox(ctx context.Context, recordID string, content []byte) error {
	query := `INSERT INTO settlement_outbox (record_id, content, status) VALUES (?, ?, ?)`

	if _, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, recordID, content, string(domain.OutboxPending)); err != nil {
		return fmt.Errorf("inserting outbox entry: %w", err)
	}
	return nil
}

// GetPendingOutbox returns the oldest pending entries first, locked until the
// surrounding transaction ends.
func (r *MySQLSettlementRepository) GetPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	query := `
		SELECT id, record_id, content, status, created_at
		FROM settlement_outbox
		WHERE status = ?
		ORDER BY id
		LIMIT ?
		FOR UPDATE`

	var rows []outboxRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, string(domain.OutboxPending), limit); err != nil {
		return nil, fmt.Errorf("querying pending outbox: %w", err)
	}

	entries := make([]domain.OutboxEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.OutboxEntry{
			ID:        row.ID,
			RecordID:  row.RecordID,
			Content:   row.Content,
			Status:    domain.OutboxStatus(row.Status),
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

func (r *MySQLSettlementRepository) MarkDoneOutboxes(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE settlement_outbox SET status = ? WHERE id IN (?)`, string(domain.OutboxDone), ids)
	if err != nil {
		return fmt.Errorf("building mark done query: %w", err)
	}

	if _, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking outbox entries done: %w", err)
	}
	return nil
}
