package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/mysql"
)

type MySQLTableRepository struct {
	db *sqlx.DB
}

func NewMySQLTableRepository(db *sqlx.DB) *MySQLTableRepository {
	return &MySQLTableRepository{db: db}
}

// ListQueue returns the pending and preparing items of one station across open
// orders, oldest order first.
func (r *MySQLTableRepository) ListQueue(ctx context.Context, origin domain.Origin) ([]domain.QueueEntry, error) {
	query := `
		SELECT ` + mysql.BillItemColumns + `
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.closed_at IS NULL
		  AND i.origin = ?
		  AND i.status IN (?, ?)
		  AND i.paid = 0
		ORDER BY o.created_at, o.id, i.id`

	var rows []mysql.BillItemRow
	err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query,
		string(origin), string(domain.ItemStatusPending), string(domain.ItemStatusPreparing))
	if err != nil {
		return nil, fmt.Errorf("querying %s queue: %w", origin, err)
	}

	entries := make([]domain.QueueEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToQueueEntry())
	}
	return entries, nil
}

// ListOpenBillItems returns every item of the open orders at a table.
func (r *MySQLTableRepository) ListOpenBillItems(ctx context.Context, tableNumber uint) ([]domain.BillItem, error) {
	query := `
		SELECT ` + mysql.BillItemColumns + `
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.table_number = ? AND o.closed_at IS NULL
		ORDER BY o.created_at, o.id, i.id`

	var rows []mysql.BillItemRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, tableNumber); err != nil {
		return nil, fmt.Errorf("querying bill items of table %d: %w", tableNumber, err)
	}
	return toBillItems(rows), nil
}

// ListOpenItems returns every item of every open order.
func (r *MySQLTableRepository) ListOpenItems(ctx context.Context) ([]domain.BillItem, error) {
	query := `
		SELECT ` + mysql.BillItemColumns + `
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.closed_at IS NULL
		ORDER BY o.table_number, o.created_at, o.id, i.id`

	var rows []mysql.BillItemRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying open items: %w", err)
	}
	return toBillItems(rows), nil
}

type historyRow struct {
	OrderCount   int        `db:"order_count"`
	OpenOrders   int        `db:"open_orders"`
	FirstOpened  *time.Time `db:"first_opened"`
	LastClosedAt *time.Time `db:"last_closed_at"`
}

// TableHistory summarizes every order placed at a table. A table with no
// orders at all is NotFound.
func (r *MySQLTableRepository) TableHistory(ctx context.Context, tableNumber uint) (*domain.TableHistory, error) {
	query := `
		SELECT COUNT(*) AS order_count,
		       COALESCE(SUM(closed_at IS NULL), 0) AS open_orders,
		       MIN(created_at) AS first_opened,
		       MAX(closed_at) AS last_closed_at
		FROM orders
		WHERE table_number = ?`

	ext := mysql.Ext(ctx, r.db)

	var row historyRow
	if err := ext.GetContext(ctx, &row, query, tableNumber); err != nil {
		return nil, fmt.Errorf("querying history of table %d: %w", tableNumber, err)
	}
	if row.OrderCount == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %d has no orders", tableNumber))
	}

	history := &domain.TableHistory{
		TableNumber:  tableNumber,
		OrderCount:   row.OrderCount,
		OpenOrders:   row.OpenOrders,
		LastClosedAt: row.LastClosedAt,
	}
	if row.FirstOpened != nil {
		history.FirstOpened = *row.FirstOpened
	}

	if row.LastClosedAt != nil {
		var opened time.Time
		err := ext.GetContext(ctx, &opened,
			`SELECT MIN(created_at) FROM orders WHERE table_number = ? AND closed_at = ?`,
			tableNumber, *row.LastClosedAt)
		if err != nil {
			return nil, fmt.Errorf("querying last bill of table %d: %w", tableNumber, err)
		}
		history.LastBillOpenedAt = &opened
	}

	return history, nil
}

// ListSettledTables returns the tables with at least one closed bill. Orders
// closed by the same payment share closed_at, so distinct close times count
// bills.
func (r *MySQLTableRepository) ListSettledTables(ctx context.Context) ([]domain.SettledTable, error) {
	query := `
		SELECT table_number,
		       MAX(closed_at) AS last_closed_at,
		       COUNT(DISTINCT closed_at) AS bill_count
		FROM orders
		WHERE closed_at IS NOT NULL
		GROUP BY table_number
		ORDER BY last_closed_at DESC, table_number`

	var rows []struct {
		TableNumber  uint      `db:"table_number"`
		LastClosedAt time.Time `db:"last_closed_at"`
		BillCount    int       `db:"bill_count"`
	}
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying settled tables: %w", err)
	}

	settled := make([]domain.SettledTable, 0, len(rows))
	for _, row := range rows {
		settled = append(settled, domain.SettledTable{
			TableNumber:  row.TableNumber,
			LastClosedAt: row.LastClosedAt,
			BillCount:    row.BillCount,
		})
	}
	return settled, nil
}

func toBillItems(rows []mysql.BillItemRow) []domain.BillItem {
	items := make([]domain.BillItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToBillItem())
	}
	return items
}
