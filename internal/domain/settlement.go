package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "comanda/internal/errors"
)

type SettlementLine struct {
	ItemID      uint64          `json:"itemId"`
	OrderID     uint64          `json:"orderId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SettlementRecord is emitted once per table bill, when its last item is paid.
type SettlementRecord struct {
	ID          string           `json:"id"`
	TableNumber uint             `json:"tableNumber"`
	OrderIDs    []uint64         `json:"orderIds"`
	Lines       []SettlementLine `json:"lines"`
	Total       decimal.Decimal  `json:"total"`
	OpenedAt    time.Time        `json:"openedAt"`
	SettledAt   time.Time        `json:"settledAt"`
}

// NewSettlementRecord itemizes every item of a fully paid bill.
func NewSettlementRecord(id string, tableNumber uint, items []BillItem, settledAt time.Time) SettlementRecord {
	rec := SettlementRecord{
		ID:          id,
		TableNumber: tableNumber,
		OrderIDs:    []uint64{},
		Lines:       make([]SettlementLine, 0, len(items)),
		Total:       decimal.Zero,
		SettledAt:   settledAt,
	}

	seen := make(map[uint64]struct{})
	for _, item := range items {
		if _, ok := seen[item.OrderID]; !ok {
			seen[item.OrderID] = struct{}{}
			rec.OrderIDs = append(rec.OrderIDs, item.OrderID)
		}
		if rec.OpenedAt.IsZero() || item.OrderCreatedAt.Before(rec.OpenedAt) {
			rec.OpenedAt = item.OrderCreatedAt
		}

		subtotal := item.Subtotal()
		rec.Lines = append(rec.Lines, SettlementLine{
			ItemID:      item.ID,
			OrderID:     item.OrderID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotal,
		})
		rec.Total = rec.Total.Add(subtotal)
	}

	return rec
}

// Split is a read-only division of a table's billable total.
type Split struct {
	TableNumber uint
	Total       decimal.Decimal
	Parts       int
	PerPart     decimal.Decimal
	Allocation  []decimal.Decimal
}

// NewSplit divides total into parts. PerPart is rounded half-up to cents
// unless that drifts PerPart × parts more than one cent from the total, in
// which case it keeps as many extra digits as needed. Allocation spreads the
// leftover cents over the first parts so that it sums to the total exactly.
func NewSplit(tableNumber uint, total decimal.Decimal, parts int) (Split, error) {
	if parts < 2 {
		return Split{}, apperrors.NewInvalidSplitError(
			fmt.Sprintf("bill must be split in at least 2 parts, got %d", parts))
	}
	if !total.IsPositive() {
		return Split{}, apperrors.NewInvalidSplitError(
			fmt.Sprintf("table %d has nothing billable to split", tableNumber))
	}

	total = total.Round(2)
	cents := total.Shift(2).IntPart()
	base := cents / int64(parts)
	remainder := cents % int64(parts)

	allocation := make([]decimal.Decimal, parts)
	for i := range allocation {
		c := base
		if int64(i) < remainder {
			c++
		}
		allocation[i] = decimal.New(c, -2)
	}

	return Split{
		TableNumber: tableNumber,
		Total:       total,
		Parts:       parts,
		PerPart:     perPart(total, parts),
		Allocation:  allocation,
	}, nil
}

var oneCent = decimal.New(1, -2)

// perPart stops at the first precision where the drift fits in a cent. With
// 2 + digits(parts) places the rounding error times parts is below half a
// cent, so the loop always ends.
func perPart(total decimal.Decimal, parts int) decimal.Decimal {
	n := decimal.NewFromInt(int64(parts))
	limit := int32(2 + len(strconv.Itoa(parts)))
	var share decimal.Decimal
	for places := int32(2); places <= limit; places++ {
		share = total.DivRound(n, places)
		if share.Mul(n).Sub(total).Abs().LessThanOrEqual(oneCent) {
			break
		}
	}
	return share
}
