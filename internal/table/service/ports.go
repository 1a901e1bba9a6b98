package service

import (
	"context"

	"comanda/internal/domain"
)

type TableRepository interface {
	ListQueue(ctx context.Context, origin domain.Origin) ([]domain.QueueEntry, error)
	ListOpenBillItems(ctx context.Context, tableNumber uint) ([]domain.BillItem, error)
	ListOpenItems(ctx context.Context) ([]domain.BillItem, error)
	TableHistory(ctx context.Context, tableNumber uint) (*domain.TableHistory, error)
	ListSettledTables(ctx context.Context) ([]domain.SettledTable, error)
}
