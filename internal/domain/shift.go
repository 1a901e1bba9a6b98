package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type ShiftTable struct {
	TableNumber uint            `json:"tableNumber"`
	Orders      []ShiftOrder    `json:"orders"`
	Total       decimal.Decimal `json:"total"`
}

type ShiftOrder struct {
	ID        uint64          `json:"id"`
	Note      *string         `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	ClosedAt  *time.Time      `json:"closedAt,omitempty"`
	Items     []ShiftItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

type ShiftItem struct {
	ID           uint64          `json:"id"`
	ProductName  string          `json:"productName"`
	Origin       Origin          `json:"origin"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Status       ItemStatus      `json:"status"`
	Paid         bool            `json:"paid"`
	PreparerName *string         `json:"preparerName,omitempty"`
}

// ShiftReport is the end-of-shift summary persisted before order data is purged.
type ShiftReport struct {
	ID               string          `json:"id"`
	ClosedAt         time.Time       `json:"closedAt"`
	Tables           []ShiftTable    `json:"tables"`
	OrderCount       int             `json:"orderCount"`
	ItemCount        int             `json:"itemCount"`
	PaidTotal        decimal.Decimal `json:"paidTotal"`
	UnpaidTotal      decimal.Decimal `json:"unpaidTotal"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
	ArchivedReceipts int             `json:"archivedReceipts"`
	Location         string          `json:"location,omitempty"`
}

func (r ShiftReport) IsEmpty() bool {
	return r.OrderCount == 0
}

// NewShiftReport groups orders by table, ascending, preserving order creation
// order inside each table.
func NewShiftReport(id string, closedAt time.Time, orders []Order) ShiftReport {
	report := ShiftReport{
		ID:          id,
		ClosedAt:    closedAt,
		Tables:      []ShiftTable{},
		PaidTotal:   decimal.Zero,
		UnpaidTotal: decimal.Zero,
		GrandTotal:  decimal.Zero,
	}

	byTable := make(map[uint]*ShiftTable)
	var numbers []uint

	for _, order := range orders {
		st, ok := byTable[order.TableNumber]
		if !ok {
			st = &ShiftTable{TableNumber: order.TableNumber, Orders: []ShiftOrder{}, Total: decimal.Zero}
			byTable[order.TableNumber] = st
			numbers = append(numbers, order.TableNumber)
		}

		so := ShiftOrder{
			ID:        order.ID,
			Note:      order.Note,
			CreatedAt: order.CreatedAt,
			ClosedAt:  order.ClosedAt,
			Items:     make([]ShiftItem, 0, len(order.Items)),
			Total:     decimal.Zero,
		}
		for _, item := range order.Items {
			subtotal := item.Subtotal()
			so.Items = append(so.Items, ShiftItem{
				ID:           item.ID,
				ProductName:  item.ProductName,
				Origin:       item.Origin,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
				Subtotal:     subtotal,
				Status:       item.Status,
				Paid:         item.Paid,
				PreparerName: item.PreparerName,
			})
			so.Total = so.Total.Add(subtotal)
			if item.Paid {
				report.PaidTotal = report.PaidTotal.Add(subtotal)
			} else {
				report.UnpaidTotal = report.UnpaidTotal.Add(subtotal)
			}
			report.ItemCount++
		}

		st.Orders = append(st.Orders, so)
		st.Total = st.Total.Add(so.Total)
		report.OrderCount++
	}

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		report.Tables = append(report.Tables, *byTable[n])
	}
	report.GrandTotal = report.PaidTotal.Add(report.UnpaidTotal)

	return report
}
