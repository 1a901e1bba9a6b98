package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// QueueEntry is an item as seen by a production station.
type QueueEntry struct {
	Item
	TableNumber    uint
	OrderCreatedAt time.Time
	OrderNote      *string
}

// BillItem is an item together with the table bill it belongs to.
type BillItem struct {
	Item
	TableNumber    uint
	OrderCreatedAt time.Time
}

// Bill is the billable view of a table: Ready and unpaid items across every
// open order sharing the table number.
type Bill struct {
	TableNumber      uint
	Items            []BillItem
	Total            decimal.Decimal
	OutstandingCount int
	OpenedAt         *time.Time
	ClosedAt         *time.Time
}

// NewBill builds the billable view from every item of the table's open orders.
func NewBill(tableNumber uint, items []BillItem) Bill {
	bill := Bill{
		TableNumber: tableNumber,
		Items:       []BillItem{},
		Total:       decimal.Zero,
	}

	for _, item := range items {
		if bill.OpenedAt == nil || item.OrderCreatedAt.Before(*bill.OpenedAt) {
			opened := item.OrderCreatedAt
			bill.OpenedAt = &opened
		}
		if item.Paid {
			continue
		}
		if !item.Billable() {
			bill.OutstandingCount++
			continue
		}
		bill.Items = append(bill.Items, item)
		bill.Total = bill.Total.Add(item.Subtotal())
	}

	return bill
}

// TableSummary describes one open table.
type TableSummary struct {
	TableNumber      uint
	OpenedAt         time.Time
	OrderCount       int
	ItemCount        int
	UnpaidCount      int
	BillableTotal    decimal.Decimal
	OutstandingTotal decimal.Decimal
}

// NewTableSummaries groups the items of open orders by table, ascending.
func NewTableSummaries(items []BillItem) []TableSummary {
	byTable := make(map[uint]*TableSummary)
	orders := make(map[uint]map[uint64]struct{})

	for _, item := range items {
		s, ok := byTable[item.TableNumber]
		if !ok {
			s = &TableSummary{
				TableNumber:      item.TableNumber,
				OpenedAt:         item.OrderCreatedAt,
				BillableTotal:    decimal.Zero,
				OutstandingTotal: decimal.Zero,
			}
			byTable[item.TableNumber] = s
			orders[item.TableNumber] = make(map[uint64]struct{})
		}
		if item.OrderCreatedAt.Before(s.OpenedAt) {
			s.OpenedAt = item.OrderCreatedAt
		}
		orders[item.TableNumber][item.OrderID] = struct{}{}

		s.ItemCount++
		if item.Paid {
			continue
		}
		s.UnpaidCount++
		s.OutstandingTotal = s.OutstandingTotal.Add(item.Subtotal())
		if item.Billable() {
			s.BillableTotal = s.BillableTotal.Add(item.Subtotal())
		}
	}

	summaries := make([]TableSummary, 0, len(byTable))
	for n, s := range byTable {
		s.OrderCount = len(orders[n])
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TableNumber < summaries[j].TableNumber })
	return summaries
}

// TableHistory is the bounds of every order placed at a table in the current
// shift. LastBillOpenedAt is the opening time of the bill that closed last.
type TableHistory struct {
	TableNumber      uint
	OrderCount       int
	OpenOrders       int
	FirstOpened      time.Time
	LastClosedAt     *time.Time
	LastBillOpenedAt *time.Time
}

type SettledTable struct {
	TableNumber  uint
	LastClosedAt time.Time
	BillCount    int
}
