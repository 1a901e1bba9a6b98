package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
)

// ItemColumns selects an order_items row aliased as i.
const ItemColumns = `i.id, i.order_id, i.product_id, i.product_name, i.quantity, i.unit_price,
		       i.origin, i.status, i.paid, i.preparer_name, i.note,
		       i.created_at, i.updated_at, i.paid_at`

// ItemRow is the sqlx mapping of an order_items row.
type ItemRow struct {
	ID           uint64          `db:"id"`
	OrderID      uint64          `db:"order_id"`
	ProductID    *uint           `db:"product_id"`
	ProductName  string          `db:"product_name"`
	Quantity     int             `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	Origin       string          `db:"origin"`
	Status       string          `db:"status"`
	Paid         bool            `db:"paid"`
	PreparerName *string         `db:"preparer_name"`
	Note         *string         `db:"note"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	PaidAt       *time.Time      `db:"paid_at"`
}

func (r ItemRow) ToDomain() domain.Item {
	status, _ := domain.ParseItemStatus(r.Status)
	return domain.Item{
		ID:           r.ID,
		OrderID:      r.OrderID,
		ProductID:    r.ProductID,
		ProductName:  r.ProductName,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		Origin:       domain.ParseOrigin(r.Origin),
		Status:       status,
		Paid:         r.Paid,
		PreparerName: r.PreparerName,
		Note:         r.Note,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		PaidAt:       r.PaidAt,
	}
}

// BillItemRow is an item joined with its order (aliased o).
type BillItemRow struct {
	ItemRow
	TableNumber    uint      `db:"table_number"`
	OrderCreatedAt time.Time `db:"order_created_at"`
	OrderNote      *string   `db:"order_note"`
}

const BillItemColumns = ItemColumns + `,
		       o.table_number, o.created_at AS order_created_at, o.note AS order_note`

func (r BillItemRow) ToBillItem() domain.BillItem {
	return domain.BillItem{
		Item:           r.ItemRow.ToDomain(),
		TableNumber:    r.TableNumber,
		OrderCreatedAt: r.OrderCreatedAt,
	}
}

func (r BillItemRow) ToQueueEntry() domain.QueueEntry {
	return domain.QueueEntry{
		Item:           r.ItemRow.ToDomain(),
		TableNumber:    r.TableNumber,
		OrderCreatedAt: r.OrderCreatedAt,
		OrderNote:      r.OrderNote,
	}
}

const OrderColumns = `o.id, o.table_number, o.note, o.created_at, o.closed_at`

type OrderRow struct {
	ID          uint64     `db:"id"`
	TableNumber uint       `db:"table_number"`
	Note        *string    `db:"note"`
	CreatedAt   time.Time  `db:"created_at"`
	ClosedAt    *time.Time `db:"closed_at"`
}

func (r OrderRow) ToDomain() domain.Order {
	return domain.Order{
		ID:          r.ID,
		TableNumber: r.TableNumber,
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
		ClosedAt:    r.ClosedAt,
		Items:       []domain.Item{},
	}
}
