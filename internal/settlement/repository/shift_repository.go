package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/mysql"
)

// LockAllOrders loads every order with its items, open or closed, holding row
// locks on all of them.
func (r *MySQLSettlementRepository) LockAllOrders(ctx context.Context) ([]domain.Order, error) {
	ext := mysql.Ext(ctx, r.db)

	var orderRows []mysql.OrderRow
	err := ext.SelectContext(ctx, &orderRows,
		`SELECT `+mysql.OrderColumns+` FROM orders o ORDER BY o.table_number, o.created_at, o.id FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("locking orders: %w", err)
	}

	var itemRows []mysql.ItemRow
	err = ext.SelectContext(ctx, &itemRows,
		`SELECT `+mysql.ItemColumns+` FROM order_items i ORDER BY i.order_id, i.id FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("locking order items: %w", err)
	}

	orders := make([]domain.Order, 0, len(orderRows))
	index := make(map[uint64]int, len(orderRows))
	for i, row := range orderRows {
		orders = append(orders, row.ToDomain())
		index[row.ID] = i
	}
	for _, row := range itemRows {
		if i, ok := index[row.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, row.ToDomain())
		}
	}
	return orders, nil
}

// ArchiveRecords stamps every unarchived settlement record with the report
// that covered it.
func (r *MySQLSettlementRepository) ArchiveRecords(ctx context.Context, reportID string, at time.Time) (int64, error) {
	query := `
		UPDATE settlement_records
		SET archived_at = ?, shift_report_id = ?
		WHERE archived_at IS NULL`

	result, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, at, reportID)
	if err != nil {
		return 0, fmt.Errorf("archiving settlement records: %w", err)
	}
	return result.RowsAffected()
}

func (r *MySQLSettlementRepository) InsertShiftReport(ctx context.Context, report domain.ShiftReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding shift report: %w", err)
	}

	query := `
		INSERT INTO shift_reports (id, closed_at, order_count, item_count, grand_total, location, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query,
		report.ID, report.ClosedAt, report.OrderCount, report.ItemCount,
		report.GrandTotal, report.Location, payload); err != nil {
		return fmt.Errorf("inserting shift report: %w", err)
	}
	return nil
}

// PurgeOrders deletes every order and item.
func (r *MySQLSettlementRepository) PurgeOrders(ctx context.Context) error {
	ext := mysql.Ext(ctx, r.db)

	if _, err := ext.ExecContext(ctx, `DELETE FROM order_items`); err != nil {
		return fmt.Errorf("purging order items: %w", err)
	}
	if _, err := ext.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("purging orders: %w", err)
	}
	return nil
}

func (r *MySQLSettlementRepository) FindShiftReport(ctx context.Context, id string) (*domain.ShiftReport, error) {
	var payload []byte
	err := mysql.Ext(ctx, r.db).GetContext(ctx, &payload, `SELECT payload FROM shift_reports WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("shift report %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying shift report: %w", err)
	}

	var report domain.ShiftReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decoding shift report: %w", err)
	}
	return &report, nil
}

// ListShiftReports returns report headers, newest first. Tables are not loaded.
func (r *MySQLSettlementRepository) ListShiftReports(ctx context.Context) ([]domain.ShiftReport, error) {
	query := `
		SELECT id, closed_at, order_count, item_count, grand_total, location
		FROM shift_reports
		ORDER BY closed_at DESC`

	var rows []struct {
		ID         string          `db:"id"`
		ClosedAt   time.Time       `db:"closed_at"`
		OrderCount int             `db:"order_count"`
		ItemCount  int             `db:"item_count"`
		GrandTotal decimal.Decimal `db:"grand_total"`
		Location   string          `db:"location"`
	}
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying shift reports: %w", err)
	}

	reports := make([]domain.ShiftReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, domain.ShiftReport{
			ID:         row.ID,
			ClosedAt:   row.ClosedAt,
			OrderCount: row.OrderCount,
			ItemCount:  row.ItemCount,
			GrandTotal: row.GrandTotal,
			Location:   row.Location,
		})
	}
	return reports, nil
}
