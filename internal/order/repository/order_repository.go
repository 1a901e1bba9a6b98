package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/mysql"
)

type MySQLOrderRepository struct {
	db *sqlx.DB
}

func NewMySQLOrderRepository(db *sqlx.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) InsertOrder(ctx context.Context, tableNumber uint, note *string, createdAt time.Time) (uint64, error) {
	query := `INSERT INTO orders (table_number, note, created_at) VALUES (?, ?, ?)`

	result, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, tableNumber, note, createdAt)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order id: %w", err)
	}
	return uint64(id), nil
}

// InsertItems stores new items under an order and returns their ids in input
// order. Items always start pending and unpaid.
func (r *MySQLOrderRepository) InsertItems(ctx context.Context, orderID uint64, items []domain.Item, createdAt time.Time) ([]uint64, error) {
	query := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price,
		                         origin, status, paid, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`

	ext := mysql.Ext(ctx, r.db)
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		result, err := ext.ExecContext(ctx, query,
			orderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
			string(item.Origin), string(domain.ItemStatusPending), item.Note, createdAt, createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting order item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting order item id: %w", err)
		}
		ids = append(ids, uint64(id))
	}
	return ids, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	query := `SELECT ` + mysql.OrderColumns + ` FROM orders o WHERE o.id = ?`

	var row mysql.OrderRow
	err := mysql.Ext(ctx, r.db).GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	orders := []domain.Order{row.ToDomain()}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns orders by creation time. Closed orders are included only on
// request.
func (r *MySQLOrderRepository) List(ctx context.Context, includeClosed bool) ([]domain.Order, error) {
	query := `SELECT ` + mysql.OrderColumns + ` FROM orders o`
	if !includeClosed {
		query += ` WHERE o.closed_at IS NULL`
	}
	query += ` ORDER BY o.created_at, o.id`

	var rows []mysql.OrderRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.ToDomain())
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MySQLOrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint64, len(orders))
	index := make(map[uint64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	query, args, err := sqlx.In(`SELECT `+mysql.ItemColumns+` FROM order_items i WHERE i.order_id IN (?) ORDER BY i.id`, ids)
	if err != nil {
		return fmt.Errorf("building item query: %w", err)
	}

	var rows []mysql.ItemRow
	if err := mysql.Ext(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("querying order items: %w", err)
	}

	for _, row := range rows {
		i := index[row.OrderID]
		orders[i].Items = append(orders[i].Items, row.ToDomain())
	}
	return nil
}

// UpdateNote overwrites the order note. Last writer wins.
func (r *MySQLOrderRepository) UpdateNote(ctx context.Context, id uint64, note *string) error {
	query := `UPDATE orders SET note = ? WHERE id = ?`

	result, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, note, id)
	if err != nil {
		return fmt.Errorf("updating order note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func (r *MySQLOrderRepository) FindItemByID(ctx context.Context, id uint64) (*domain.Item, error) {
	query := `SELECT ` + mysql.ItemColumns + ` FROM order_items i WHERE i.id = ?`

	var row mysql.ItemRow
	err := mysql.Ext(ctx, r.db).GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("item with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying item by id: %w", err)
	}

	item := row.ToDomain()
	return &item, nil
}

// CompareAndSetStatus moves an unpaid item from one status to another only if
// it still holds the status the caller read. The preparer name is written on
// the first transition that supplies one and never replaced.
func (r *MySQLOrderRepository) CompareAndSetStatus(ctx context.Context, id uint64, from, to domain.ItemStatus, preparer *string, at time.Time) (bool, error) {
	query := `
		UPDATE order_items
		SET status = ?, preparer_name = COALESCE(preparer_name, ?), updated_at = ?
		WHERE id = ? AND status = ? AND paid = 0`

	result, err := mysql.Ext(ctx, r.db).ExecContext(ctx, query, string(to), preparer, at, id, string(from))
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// FindOrderForUpdate reads the order row with a locking read so the caller
// sees the latest committed closed_at.
func (r *MySQLOrderRepository) FindOrderForUpdate(ctx context.Context, id uint64) (*domain.Order, error) {
	query := `SELECT ` + mysql.OrderColumns + ` FROM orders o WHERE o.id = ? FOR UPDATE`

	var row mysql.OrderRow
	err := mysql.Ext(ctx, r.db).GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("locking order: %w", err)
	}

	order := row.ToDomain()
	return &order, nil
}
