package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/settlement/report"
)

// ShiftService closes a shift: report, archive, purge.
type ShiftService struct {
	tx        Transactor
	repo      ShiftRepository
	artifacts ReportStore
	outbox    OutboxFlusher
	auth      Authorizer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewShiftService(tx Transactor, repo ShiftRepository, artifacts ReportStore, outbox OutboxFlusher, auth Authorizer, logger *zap.Logger) *ShiftService {
	return &ShiftService{
		tx:        tx,
		repo:      repo,
		artifacts: artifacts,
		outbox:    outbox,
		auth:      auth,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:     uuid.NewString,
	}
}

// Close builds a report of every order in the store, writes it to stable
// storage, prints the receipts still queued in the outbox, archives settlement
// artifacts and only then purges orders and items. Everything runs in one transaction holding every table and order
// lock; if the report cannot be saved nothing is purged.
func (s *ShiftService) Close(ctx context.Context, token string) (*domain.ShiftReport, error) {
	if err := s.auth.Authorize(ctx, token); err != nil {
		s.logger.Warn("shift closure rejected", zap.Error(err))
		return nil, err
	}

	closedAt := s.now()
	reportID := s.newID()
	var shift domain.ShiftReport

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.tx.LockAllTables(ctx); err != nil {
			return err
		}

		orders, err := s.repo.LockAllOrders(ctx)
		if err != nil {
			return err
		}
		shift = domain.NewShiftReport(reportID, closedAt, orders)

		// Table locks keep payments from queueing new entries meanwhile.
		if _, err := s.outbox.Flush(ctx); err != nil {
			return err
		}

		content, err := report.Shift(shift)
		if err != nil {
			return err
		}
		location, err := s.artifacts.SaveReport(reportID, closedAt, content)
		if err != nil {
			return err
		}
		shift.Location = location

		if _, err := s.repo.ArchiveRecords(ctx, reportID, closedAt); err != nil {
			return err
		}
		archived, err := s.artifacts.ArchiveReceipts(reportID)
		if err != nil {
			return err
		}
		shift.ArchivedReceipts = archived

		if err := s.repo.InsertShiftReport(ctx, shift); err != nil {
			return err
		}
		return s.repo.PurgeOrders(ctx)
	})
	if err != nil {
		s.logger.Error("error closing shift", zap.String("reportId", reportID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("shift closed",
		zap.String("reportId", shift.ID),
		zap.Int("archivedReceipts", shift.ArchivedReceipts),
		zap.Int("orders", shift.OrderCount),
		zap.Int("items", shift.ItemCount),
		zap.String("total", shift.GrandTotal.StringFixed(2)),
		zap.String("location", shift.Location),
	)
	return &shift, nil
}

func (s *ShiftService) GetReport(ctx context.Context, id string) (*domain.ShiftReport, error) {
	shift, err := s.repo.FindShiftReport(ctx, id)
	if err != nil {
		return nil, apperrors.WrapStoreError("reading shift report", err)
	}
	return shift, nil
}

func (s *ShiftService) ListReports(ctx context.Context) ([]domain.ShiftReport, error) {
	reports, err := s.repo.ListShiftReports(ctx)
	if err != nil {
		s.logger.Error("error listing shift reports", zap.Error(err))
		return nil, apperrors.WrapStoreError("listing shift reports", err)
	}
	return reports, nil
}
