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

// LifecycleService advances items through pending, preparing and ready.
type LifecycleService struct {
	tx     Transactor
	items  ItemRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewLifecycleService(tx Transactor, items ItemRepository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		tx:     tx,
		items:  items,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Transition validates target against the item as read and applies it with a
// conditional update. If the item changed in between, the call fails with
// StaleState and nothing is written.
func (s *LifecycleService) Transition(ctx context.Context, itemID uint64, target domain.ItemStatus, actor string) (*domain.Item, error) {
	var updated *domain.Item

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		item, err := s.items.FindItemByID(ctx, itemID)
		if err != nil {
			return err
		}

		if err := item.ValidateTransition(target, actor); err != nil {
			return err
		}

		var preparer *string
		if target == domain.ItemStatusPreparing {
			name := strings.TrimSpace(actor)
			preparer = &name
		}

		now := s.now()
		ok, err := s.items.CompareAndSetStatus(ctx, item.ID, item.Status, target, preparer, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewStaleStateError(
				fmt.Sprintf("item %d changed since it was read as %s, refetch and retry", item.ID, item.Status))
		}

		updated = item
		updated.Status = target
		updated.UpdatedAt = now
		if updated.PreparerName == nil {
			updated.PreparerName = preparer
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("item transition rejected",
			zap.Uint64("itemId", itemID),
			zap.String("target", string(target)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("item transitioned",
		zap.Uint64("itemId", itemID),
		zap.String("status", string(target)),
	)
	return updated, nil
}
