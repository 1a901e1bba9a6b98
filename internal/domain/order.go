package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uint64
	TableNumber uint
	Note        *string
	CreatedAt   time.Time
	ClosedAt    *time.Time
	Items       []Item
}

func (o Order) IsClosed() bool {
	return o.ClosedAt != nil
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderLine is one requested product line before catalog lookup.
type OrderLine struct {
	ProductID uint
	Quantity  int
	Note      *string
}

const (
	MaxLinesPerOrder = 100
	MaxLineQuantity  = 1000
)
