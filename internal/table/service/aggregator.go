package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// Aggregator exposes the read side of the floor: station queues and table
// bills. It never mutates.
type Aggregator struct {
	repo   TableRepository
	logger *zap.Logger
}

func NewAggregator(repo TableRepository, logger *zap.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

func (a *Aggregator) ListQueue(ctx context.Context, origin domain.Origin) ([]domain.QueueEntry, error) {
	if !origin.IsStation() {
		return nil, apperrors.NewValidationError("invalid origin", apperrors.ValidationDetail{
			Field:   "origin",
			Message: fmt.Sprintf("origin must be %s or %s", domain.OriginKitchen, domain.OriginBar),
		})
	}

	entries, err := a.repo.ListQueue(ctx, origin)
	if err != nil {
		a.logger.Error("failed to list queue", zap.String("origin", string(origin)), zap.Error(err))
		return nil, apperrors.WrapStoreError("listing queue", err)
	}
	return entries, nil
}

// ListBillable returns the bill of the table's open orders. When the table
// has none, the last closed bill is described with no items.
func (a *Aggregator) ListBillable(ctx context.Context, tableNumber uint) (*domain.Bill, error) {
	if tableNumber == 0 {
		return nil, apperrors.NewValidationError("invalid table", apperrors.ValidationDetail{
			Field:   "table",
			Message: "table must be greater than zero",
		})
	}

	history, err := a.repo.TableHistory(ctx, tableNumber)
	if err != nil {
		return nil, apperrors.WrapStoreError("reading table history", err)
	}

	if history.OpenOrders == 0 {
		bill := domain.NewBill(tableNumber, nil)
		bill.OpenedAt = history.LastBillOpenedAt
		bill.ClosedAt = history.LastClosedAt
		return &bill, nil
	}

	items, err := a.repo.ListOpenBillItems(ctx, tableNumber)
	if err != nil {
		a.logger.Error("failed to list bill items", zap.Uint("table", tableNumber), zap.Error(err))
		return nil, apperrors.WrapStoreError("listing bill items", err)
	}

	bill := domain.NewBill(tableNumber, items)
	return &bill, nil
}

func (a *Aggregator) ListOpenTables(ctx context.Context) ([]domain.TableSummary, error) {
	items, err := a.repo.ListOpenItems(ctx)
	if err != nil {
		a.logger.Error("failed to list open tables", zap.Error(err))
		return nil, apperrors.WrapStoreError("listing open tables", err)
	}
	return domain.NewTableSummaries(items), nil
}

func (a *Aggregator) ListSettledTables(ctx context.Context) ([]domain.SettledTable, error) {
	settled, err := a.repo.ListSettledTables(ctx)
	if err != nil {
		a.logger.Error("failed to list settled tables", zap.Error(err))
		return nil, apperrors.WrapStoreError("listing settled tables", err)
	}
	return settled, nil
}
