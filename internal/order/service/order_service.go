package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type OrderService struct {
	tx      Transactor
	orders  OrderRepository
	catalog ProductCatalog
	logger  *zap.Logger
	now     func() time.Time
}

func NewOrderService(tx Transactor, orders OrderRepository, catalog ProductCatalog, logger *zap.Logger) *OrderService {
	return &OrderService{
		tx:      tx,
		orders:  orders,
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder opens a new order at a table. Product name, price and origin
// are copied into each item. The whole order is rejected if any line refers
// to an unknown or inactive product.
func (s *OrderService) CreateOrder(ctx context.Context, tableNumber uint, lines []domain.OrderLine, note *string) (*domain.Order, error) {
	if tableNumber == 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "tableNumber",
			Message: "tableNumber must be a positive integer",
		})
	}

	items, err := s.buildItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.tx.LockTables(ctx, tableNumber); err != nil {
			return err
		}

		now := s.now()
		orderID, err := s.orders.InsertOrder(ctx, tableNumber, normalizeNote(note), now)
		if err != nil {
			return err
		}
		if _, err := s.orders.InsertItems(ctx, orderID, items, now); err != nil {
			return err
		}

		order, err = s.orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		s.logger.Warn("create order failed", zap.Uint("tableNumber", tableNumber), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint64("orderId", order.ID),
		zap.Uint("tableNumber", tableNumber),
		zap.Int("itemCount", len(order.Items)),
	)
	return order, nil
}

// AddItems appends items to an order that is still open.
func (s *OrderService) AddItems(ctx context.Context, orderID uint64, lines []domain.OrderLine) (*domain.Order, error) {
	items, err := s.buildItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	// table_number never changes, so it can be read before the lock is taken.
	current, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.WrapStoreError("reading order", err)
	}

	var order *domain.Order
	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.tx.LockTables(ctx, current.TableNumber); err != nil {
			return err
		}

		locked, err := s.orders.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if locked.IsClosed() {
			return apperrors.NewInvalidTransitionError(
				fmt.Sprintf("order %d is closed and cannot take new items", orderID), "closed", "open")
		}

		if _, err := s.orders.InsertItems(ctx, orderID, items, s.now()); err != nil {
			return err
		}

		order, err = s.orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		s.logger.Warn("add items failed", zap.Uint64("orderId", orderID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("items added", zap.Uint64("orderId", orderID), zap.Int("added", len(items)))
	return order, nil
}

func (s *OrderService) UpdateNote(ctx context.Context, orderID uint64, note *string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateNote(ctx, orderID, normalizeNote(note)); err != nil {
			return err
		}
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.WrapStoreError("reading order", err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, includeClosed bool) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, includeClosed)
	if err != nil {
		return nil, apperrors.WrapStoreError("listing orders", err)
	}
	return orders, nil
}

func (s *OrderService) buildItems(ctx context.Context, lines []domain.OrderLine) ([]domain.Item, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}

	found, _, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, apperrors.WrapStoreError("looking up products", err)
	}
	products := make(map[uint]domain.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	var details []apperrors.ValidationDetail
	items := make([]domain.Item, 0, len(lines))
	for idx, l := range lines {
		field := fmt.Sprintf("items[%d].productId", idx)
		p, ok := products[l.ProductID]
		if !ok {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: fmt.Sprintf("product %d does not exist", l.ProductID),
			})
			continue
		}
		if !p.IsActive {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: fmt.Sprintf("product %d is not available", l.ProductID),
			})
			continue
		}

		productID := p.ID
		items = append(items, domain.Item{
			ProductID:   &productID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			Origin:      p.Origin,
			Status:      domain.ItemStatusPending,
			Note:        normalizeNote(l.Note),
		})
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("order refers to unavailable products", details...)
	}
	return items, nil
}

func validateLines(lines []domain.OrderLine) error {
	var details []apperrors.ValidationDetail

	if len(lines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}
	if len(lines) > domain.MaxLinesPerOrder {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("items exceeds maximum of %d", domain.MaxLinesPerOrder),
		})
	}

	for idx, l := range lines {
		if l.ProductID == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].productId", idx),
				Message: "each productId must be a positive integer",
			})
		}
		if l.Quantity < 1 || l.Quantity > domain.MaxLineQuantity {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", idx),
				Message: fmt.Sprintf("quantity must be between 1 and %d", domain.MaxLineQuantity),
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
