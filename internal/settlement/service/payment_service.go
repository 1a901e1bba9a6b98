package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// PaymentService settles items and tables. Every payment runs in one
// transaction under the lock of each table it touches.
type PaymentService struct {
	tx     Transactor
	repo   PaymentRepository
	bills  BillReader
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewPaymentService(tx Transactor, repo PaymentRepository, bills BillReader, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:     tx,
		repo:   repo,
		bills:  bills,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:  uuid.NewString,
	}
}

// PayItems pays an explicit set of items. The batch is all or nothing: an
// unknown id or an unpaid item that is not ready rejects every id. Items
// already paid are skipped. Tables left with nothing unpaid are closed.
func (s *PaymentService) PayItems(ctx context.Context, itemIDs []uint64) (*domain.ItemPayment, error) {
	ids := dedupe(itemIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("no items to pay", apperrors.ValidationDetail{
			Field:   "itemIds",
			Message: "at least one item id is required",
		})
	}

	// An item never moves between tables, so the lock set is known up front.
	itemTables, err := s.repo.FindItemTables(ctx, ids)
	if err != nil {
		s.logger.Error("failed to resolve item tables", zap.Error(err))
		return nil, apperrors.WrapStoreError("resolving item tables", err)
	}
	if missing := missingIDs(ids, itemTables); len(missing) > 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("items not found: %v", missing))
	}

	tables := make([]uint, 0, len(itemTables))
	for _, t := range itemTables {
		tables = append(tables, t)
	}

	now := s.now()
	result := &domain.ItemPayment{
		SkippedIDs:  []uint64{},
		PaidTotal:   decimal.Zero,
		Settlements: []domain.SettlementRecord{},
	}

	err = s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.tx.LockTables(ctx, tables...); err != nil {
			return err
		}

		items, err := s.repo.LockItems(ctx, ids)
		if err != nil {
			return err
		}
		if len(items) != len(ids) {
			return apperrors.NewNotFoundError("some items no longer exist")
		}

		var payable, notReady []uint64
		touched := make(map[uint]struct{})
		for _, item := range items {
			switch {
			case item.Paid:
				result.SkippedIDs = append(result.SkippedIDs, item.ID)
			case !item.Billable():
				notReady = append(notReady, item.ID)
			default:
				payable = append(payable, item.ID)
				result.PaidTotal = result.PaidTotal.Add(item.Subtotal())
				touched[item.TableNumber] = struct{}{}
			}
		}
		if len(notReady) > 0 {
			return apperrors.NewNotPayableError("items are not ready to be paid", notReady...)
		}

		if err := s.markPaid(ctx, payable, now); err != nil {
			return err
		}
		result.Updated = len(payable)

		for _, table := range sortedTables(touched) {
			rec, err := s.settleIfComplete(ctx, table, now)
			if err != nil {
				return err
			}
			if rec != nil {
				result.Settlements = append(result.Settlements, *rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("items paid",
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.SkippedIDs)),
		zap.String("total", result.PaidTotal.StringFixed(2)),
		zap.Uints("closedTables", result.ClosedTables()),
	)
	return result, nil
}

// PayTable pays every ready item of the table's open bill.
func (s *PaymentService) PayTable(ctx context.Context, tableNumber uint) (*domain.TablePayment, error) {
	if tableNumber == 0 {
		return nil, invalidTable()
	}

	now := s.now()
	var result *domain.TablePayment

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		if err := s.tx.LockTables(ctx, tableNumber); err != nil {
			return err
		}

		items, err := s.repo.LockOpenBillItems(ctx, tableNumber)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("table %d has no open bill", tableNumber))
		}

		bill := domain.NewBill(tableNumber, items)
		if len(bill.Items) == 0 {
			return apperrors.NewNotPayableError(fmt.Sprintf("table %d has nothing ready to pay", tableNumber))
		}

		ids := make([]uint64, 0, len(bill.Items))
		for _, item := range bill.Items {
			ids = append(ids, item.ID)
		}
		if err := s.markPaid(ctx, ids, now); err != nil {
			return err
		}

		rec, err := s.settleIfComplete(ctx, tableNumber, now)
		if err != nil {
			return err
		}

		result = &domain.TablePayment{
			TableNumber: tableNumber,
			Paid:        len(ids),
			PaidTotal:   bill.Total,
			Outstanding: bill.OutstandingCount,
			Settlement:  rec,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table paid",
		zap.Uint("table", tableNumber),
		zap.Int("paid", result.Paid),
		zap.String("total", result.PaidTotal.StringFixed(2)),
		zap.Bool("closed", result.Closed()),
	)
	return result, nil
}

// SplitBill divides the table's billable total. It changes nothing.
func (s *PaymentService) SplitBill(ctx context.Context, tableNumber uint, parts int) (*domain.Split, error) {
	if tableNumber == 0 {
		return nil, invalidTable()
	}

	items, err := s.bills.ListOpenBillItems(ctx, tableNumber)
	if err != nil {
		s.logger.Error("failed to read bill for split", zap.Uint("table", tableNumber), zap.Error(err))
		return nil, apperrors.WrapStoreError("reading bill", err)
	}

	bill := domain.NewBill(tableNumber, items)
	split, err := domain.NewSplit(tableNumber, bill.Total, parts)
	if err != nil {
		return nil, err
	}
	return &split, nil
}

func (s *PaymentService) ListReceipts(ctx context.Context, tableNumber *uint, from, to *time.Time) ([]domain.SettlementRecord, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.NewValidationError("invalid period", apperrors.ValidationDetail{
			Field:   "from",
			Message: "from must not be after to",
		})
	}

	records, err := s.repo.FindRecords(ctx, tableNumber, from, to)
	if err != nil {
		s.logger.Error("failed to list receipts", zap.Error(err))
		return nil, apperrors.WrapStoreError("listing receipts", err)
	}
	return records, nil
}

func (s *PaymentService) markPaid(ctx context.Context, ids []uint64, at time.Time) error {
	n, err := s.repo.MarkPaid(ctx, ids, at)
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return apperrors.NewStaleStateError("items changed while being paid, refetch and retry")
	}
	return nil
}

// settleIfComplete closes the table's open bill when every item on it is
// paid, storing the settlement record and queueing it for printing.
func (s *PaymentService) settleIfComplete(ctx context.Context, tableNumber uint, at time.Time) (*domain.SettlementRecord, error) {
	items, err := s.repo.LockOpenBillItems(ctx, tableNumber)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	for _, item := range items {
		if !item.Paid {
			return nil, nil
		}
	}

	rec := domain.NewSettlementRecord(s.newID(), tableNumber, items, at)

	if err := s.repo.CloseOrders(ctx, rec.OrderIDs, at); err != nil {
		return nil, err
	}
	if err := s.repo.InsertRecord(ctx, rec); err != nil {
		return nil, err
	}

	content, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding settlement record: %w", err)
	}
	if err := s.repo.CreateOutbox(ctx, rec.ID, content); err != nil {
		return nil, err
	}

	return &rec, nil
}

func invalidTable() error {
	return apperrors.NewValidationError("invalid table", apperrors.ValidationDetail{
		Field:   "table",
		Message: "table must be greater than zero",
	})
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(ids []uint64, found map[uint64]uint) []uint64 {
	var missing []uint64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func sortedTables(set map[uint]struct{}) []uint {
	tables := make([]uint, 0, len(set))
	for t := range set {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i] < tables[j] })
	return tables
}
