package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"comanda/internal/domain"
	"comanda/internal/infrastructure/mysql"
)

type MySQLSettlementRepository struct {
	db *sqlx.DB
}

func NewMySQLSettlementRepository(db *sqlx.DB) *MySQLSettlementRepository {
	return &MySQLSettlementRepository{db: db}
}

// FindItemTables maps each existing item id to its table number. Ids that do
// not exist are absent from the result.
func (r *MySQLSettlementRepository) FindItemTables(ctx context.Context, ids []uint64) (map[uint64]uint, error) {
	tables := make(map[uint64]uint, len(ids))
	if len(ids) == 0 {
		return tables, nil
	}

	query, args, err := sqlx.In(`
		SELECT i.id, o.table_number
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("building item tables query: %w", err)
	}

	var rows []struct {
		ID          uint64 `db:"id"`
		TableNumber uint   `db:"table_number"`
	}
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying item tables: %w", err)
	}

	for _, row := range rows {
		tables[row.ID] = row.TableNumber
	}
	return tables, nil
}

// LockItems reads the latest state of the given items and holds their row
// locks until the transaction ends.
func (r *MySQLSettlementRepository) LockItems(ctx context.Context, ids []uint64) ([]domain.BillItem, error) {
	if len(ids) == 0 {
		return []domain.BillItem{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+mysql.BillItemColumns+`
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id IN (?)
		ORDER BY i.id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("building lock items query: %w", err)
	}

	var rows []mysql.BillItemRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("locking items: %w", err)
	}
	return toBillItems(rows), nil
}

// LockOpenBillItems reads and locks every item of the table's open orders.
func (r *MySQLSettlementRepository) LockOpenBillItems(ctx context.Context, tableNumber uint) ([]domain.BillItem, error) {
	query := `
		SELECT ` + mysql.BillItemColumns + `
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.table_number = ? AND o.closed_at IS NULL
		ORDER BY i.id
		FOR UPDATE`

	var rows []mysql.BillItemRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, tableNumber); err != nil {
		return nil, fmt.Errorf("locking bill items of table %d: %w", tableNumber, err)
	}
	return toBillItems(rows), nil
}

// MarkPaid flags ready, unpaid items as paid and returns how many changed.
func (r *MySQLSettlementRepository) MarkPaid(ctx context.Context, ids []uint64, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`
		UPDATE order_items
		SET paid = 1, paid_at = ?, updated_at = ?
		WHERE id IN (?) AND paid = 0 AND status = ?`,
		at, at, ids, string(domain.ItemStatusReady))
	if err != nil {
		return 0, fmt.Errorf("building mark paid query: %w", err)
	}

	result, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("marking items paid: %w", err)
	}
	return result.RowsAffected()
}

// CloseOrders sets closed_at on orders that are still open.
func (r *MySQLSettlementRepository) CloseOrders(ctx context.Context, orderIDs []uint64, at time.Time) error {
	if len(orderIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE orders SET closed_at = ? WHERE id IN (?) AND closed_at IS NULL`, at, orderIDs)
	if err != nil {
		return fmt.Errorf("building close orders query: %w", err)
	}

	if _, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("closing orders: %w", err)
	}
	return nil
}

func (r *MySQLSettlementRepository) InsertRecord(ctx context.Context, rec domain.SettlementRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding settlement record: %w", err)
	}

	query := `
		INSERT INTO settlement_records (id, table_number, total, payload, settled_at)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query,
		rec.ID, rec.TableNumber, rec.Total, payload, rec.SettledAt); err != nil {
		return fmt.Errorf("inserting settlement record: %w", err)
	}
	return nil
}

// FindRecords returns persisted settlement records, newest first. Nil filters
// are ignored; from and to are inclusive.
func (r *MySQLSettlementRepository) FindRecords(ctx context.Context, tableNumber *uint, from, to *time.Time) ([]domain.SettlementRecord, error) {
	query := `SELECT payload FROM settlement_records WHERE 1 = 1`
	var args []interface{}

	if tableNumber != nil {
		query += ` AND table_number = ?`
		args = append(args, *tableNumber)
	}
	if from != nil {
		query += ` AND settled_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND settled_at <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY settled_at DESC, id`

	var payloads [][]byte
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &payloads, query, args...); err != nil {
		return nil, fmt.Errorf("querying settlement records: %w", err)
	}

	records := make([]domain.SettlementRecord, 0, len(payloads))
	for _, p := range payloads {
		var rec domain.SettlementRecord
		if err := json.Unmarshal(p, &rec); err != nil {
			return nil, fmt.Errorf("decoding settlement record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toBillItems(rows []mysql.BillItemRow) []domain.BillItem {
	items := make([]domain.BillItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.ToBillItem())
	}
	return items
}
