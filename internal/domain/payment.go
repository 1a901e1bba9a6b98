package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemPayment is the outcome of paying an explicit set of items.
type ItemPayment struct {
	Updated     int
	SkippedIDs  []uint64
	PaidTotal   decimal.Decimal
	Settlements []SettlementRecord
}

func (p ItemPayment) ClosedTables() []uint {
	tables := make([]uint, 0, len(p.Settlements))
	for _, s := range p.Settlements {
		tables = append(tables, s.TableNumber)
	}
	return tables
}

// TablePayment is the outcome of paying a table's billable set.
type TablePayment struct {
	TableNumber uint
	Paid        int
	PaidTotal   decimal.Decimal
	Outstanding int
	Settlement  *SettlementRecord
}

func (p TablePayment) Closed() bool {
	return p.Settlement != nil
}

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
)

// OutboxEntry is a settlement record waiting to be printed and published.
type OutboxEntry struct {
	ID        int64
	RecordID  string
	Content   []byte
	Status    OutboxStatus
	CreatedAt time.Time
}
