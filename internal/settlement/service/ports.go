package service

import (
	"context"
	"time"

	"comanda/internal/domain"
)

type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	LockTables(ctx context.Context, tables ...uint) error
	LockAllTables(ctx context.Context) error
}

type PaymentRepository interface {
	FindItemTables(ctx context.Context, ids []uint64) (map[uint64]uint, error)
	LockItems(ctx context.Context, ids []uint64) ([]domain.BillItem, error)
	LockOpenBillItems(ctx context.Context, tableNumber uint) ([]domain.BillItem, error)
	MarkPaid(ctx context.Context, ids []uint64, at time.Time) (int64, error)
	CloseOrders(ctx context.Context, orderIDs []uint64, at time.Time) error
	InsertRecord(ctx context.Context, rec domain.SettlementRecord) error
	CreateOutbox(ctx context.Context, recordID string, content []byte) error
	FindRecords(ctx context.Context, tableNumber *uint, from, to *time.Time) ([]domain.SettlementRecord, error)
}

// BillReader is the non-locking view of a table's open bill.
type BillReader interface {
	ListOpenBillItems(ctx context.Context, tableNumber uint) ([]domain.BillItem, error)
}

type ShiftRepository interface {
	LockAllOrders(ctx context.Context) ([]domain.Order, error)
	ArchiveRecords(ctx context.Context, reportID string, at time.Time) (int64, error)
	InsertShiftReport(ctx context.Context, report domain.ShiftReport) error
	PurgeOrders(ctx context.Context) error
	FindShiftReport(ctx context.Context, id string) (*domain.ShiftReport, error)
	ListShiftReports(ctx context.Context) ([]domain.ShiftReport, error)
}

type OutboxRepository interface {
	GetPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEntry, error)
	MarkDoneOutboxes(ctx context.Context, ids []int64) error
}

// OutboxFlusher delivers every pending settlement record.
type OutboxFlusher interface {
	Flush(ctx context.Context) (int, error)
}

type ReceiptStore interface {
	SaveReceipt(tableNumber uint, settledAt time.Time, content []byte) (string, error)
}

type ReportStore interface {
	SaveReport(reportID string, closedAt time.Time, content []byte) (string, error)
	ArchiveReceipts(reportID string) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
}

type Authorizer interface {
	Authorize(ctx context.Context, token string) error
}
