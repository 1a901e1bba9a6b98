package service

import (
	"context"
	"time"

	"comanda/internal/domain"
)

type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	LockTables(ctx context.Context, tables ...uint) error
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, tableNumber uint, note *string, createdAt time.Time) (uint64, error)
	InsertItems(ctx context.Context, orderID uint64, items []domain.Item, createdAt time.Time) ([]uint64, error)
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindOrderForUpdate(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, includeClosed bool) ([]domain.Order, error)
	UpdateNote(ctx context.Context, id uint64, note *string) error
}

type ItemRepository interface {
	FindItemByID(ctx context.Context, id uint64) (*domain.Item, error)
	CompareAndSetStatus(ctx context.Context, id uint64, from, to domain.ItemStatus, preparer *string, at time.Time) (bool, error)
}

type ProductCatalog interface {
	Lookup(ctx context.Context, ids []uint) (found []domain.Product, notFoundIDs []uint, err error)
}
