package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type fakeTx struct {
	locked    [][]uint
	lockedAll int
}

func (f *fakeTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTx) LockTables(ctx context.Context, tables ...uint) error {
	f.locked = append(f.locked, tables)
	return nil
}

func (f *fakeTx) LockAllTables(ctx context.Context) error {
	f.lockedAll++
	return nil
}

// memStore is an in-memory order store standing in for every settlement
// repository port.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	orders  map[uint64]*domain.Order
	items   map[uint64]*domain.BillItem
	records []domain.SettlementRecord
	outbox  []domain.OutboxEntry
	reports []domain.ShiftReport
	calls   *[]string

	markPaidShort bool
	purgeErr      error
	readErr       error
}

func newMemStore(calls *[]string) *memStore {
	return &memStore{
		orders: make(map[uint64]*domain.Order),
		items:  make(map[uint64]*domain.BillItem),
		calls:  calls,
	}
}

func (m *memStore) record(call string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, call)
	}
}

var t0 = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

// addOrder stores an open order and returns its item ids in input order.
func (m *memStore) addOrder(table uint, items ...domain.Item) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	order := &domain.Order{ID: m.nextID, TableNumber: table, CreatedAt: t0.Add(time.Duration(m.nextID) * time.Minute)}
	m.orders[order.ID] = order

	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		m.nextID++
		item.ID = m.nextID
		item.OrderID = order.ID
		m.items[item.ID] = &domain.BillItem{Item: item, TableNumber: table, OrderCreatedAt: order.CreatedAt}
		ids = append(ids, item.ID)
	}
	return ids
}

func (m *memStore) setStatus(id uint64, status domain.ItemStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Status = status
}

func (m *memStore) item(id uint64) domain.BillItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.items[id]
}

func (m *memStore) tableClosed(table uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TableNumber == table && o.ClosedAt == nil {
			return false
		}
	}
	return true
}

func (m *memStore) FindItemTables(ctx context.Context, ids []uint64) (map[uint64]uint, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64]uint)
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out[id] = item.TableNumber
		}
	}
	return out, nil
}

func (m *memStore) LockItems(ctx context.Context, ids []uint64) ([]domain.BillItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BillItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memStore) openItems(table uint) []domain.BillItem {
	var out []domain.BillItem
	for _, item := range m.items {
		if item.TableNumber == table && m.orders[item.OrderID].ClosedAt == nil {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) LockOpenBillItems(ctx context.Context, table uint) ([]domain.BillItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openItems(table), nil
}

func (m *memStore) ListOpenBillItems(ctx context.Context, table uint) ([]domain.BillItem, error) {
	return m.LockOpenBillItems(ctx, table)
}

func (m *memStore) MarkPaid(ctx context.Context, ids []uint64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		item := m.items[id]
		if item.Paid || item.Status != domain.ItemStatusReady {
			continue
		}
		item.Paid = true
		paidAt := at
		item.PaidAt = &paidAt
		n++
	}
	if m.markPaidShort && n > 0 {
		n--
	}
	return n, nil
}

func (m *memStore) CloseOrders(ctx context.Context, orderIDs []uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range orderIDs {
		closedAt := at
		m.orders[id].ClosedAt = &closedAt
	}
	return nil
}

func (m *memStore) InsertRecord(ctx context.Context, rec domain.SettlementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) CreateOutbox(ctx context.Context, recordID string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, domain.OutboxEntry{
		ID: int64(len(m.outbox) + 1), RecordID: recordID, Content: content, Status: domain.OutboxPending,
	})
	return nil
}

func (m *memStore) FindRecords(ctx context.Context, table *uint, from, to *time.Time) ([]domain.SettlementRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SettlementRecord
	for _, r := range m.records {
		if table != nil && r.TableNumber != *table {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) LockAllOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("lock-orders")

	var orders []domain.Order
	for _, o := range m.orders {
		order := *o
		order.Items = nil
		for _, item := range m.items {
			if item.OrderID == o.ID {
				order.Items = append(order.Items, item.Item)
			}
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *memStore) ArchiveRecords(ctx context.Context, reportID string, at time.Time) (int64, error) {
	m.record("archive-records")
	return int64(len(m.records)), nil
}

func (m *memStore) InsertShiftReport(ctx context.Context, report domain.ShiftReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("insert-report")
	m.reports = append(m.reports, report)
	return nil
}

func (m *memStore) PurgeOrders(ctx context.Context) error {
	m.record("purge")
	if m.purgeErr != nil {
		return m.purgeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make(map[uint64]*domain.Order)
	m.items = make(map[uint64]*domain.BillItem)
	return nil
}

func (m *memStore) FindShiftReport(ctx context.Context, id string) (*domain.ShiftReport, error) {
	for _, r := range m.reports {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, apperrors.NewNotFoundError("shift report " + id + " not found")
}

func (m *memStore) ListShiftReports(ctx context.Context) ([]domain.ShiftReport, error) {
	return m.reports, nil
}

func (m *memStore) GetPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OutboxEntry
	for _, e := range m.outbox {
		if e.Status == domain.OutboxPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) MarkDoneOutboxes(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		for i := range m.outbox {
			if m.outbox[i].ID == id {
				m.outbox[i].Status = domain.OutboxDone
			}
		}
	}
	return nil
}

// fakeArtifacts records every write into calls.
type fakeArtifacts struct {
	calls    *[]string
	saveErr  error
	receipts map[string][]byte
	reports  map[string][]byte
}

func newFakeArtifacts(calls *[]string) *fakeArtifacts {
	return &fakeArtifacts{calls: calls, receipts: map[string][]byte{}, reports: map[string][]byte{}}
}

func (f *fakeArtifacts) SaveReceipt(table uint, settledAt time.Time, content []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := fmt.Sprintf("receipts/table-%d-%d.txt", table, len(f.receipts)+1)
	f.receipts[path] = content
	return path, nil
}

func (f *fakeArtifacts) SaveReport(reportID string, closedAt time.Time, content []byte) (string, error) {
	*f.calls = append(*f.calls, "save-report")
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "reports/" + reportID + ".txt"
	f.reports[path] = content
	return path, nil
}

func (f *fakeArtifacts) ArchiveReceipts(reportID string) (int, error) {
	*f.calls = append(*f.calls, "archive-receipts")
	n := len(f.receipts)
	f.receipts = map[string][]byte{}
	return n, nil
}

type fakeAuthorizer struct {
	token string
}

func (f fakeAuthorizer) Authorize(ctx context.Context, token string) error {
	if token == "" || token != f.token {
		return apperrors.NewAuthorizationError("invalid admin token")
	}
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	var rec domain.SettlementRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return errors.New("publisher got a non-record body")
	}
	f.published = append(f.published, key)
	return nil
}

func dish(name, price string, qty int, origin domain.Origin) domain.Item {
	return domain.Item{
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
		Origin:      origin,
		Status:      domain.ItemStatusPending,
	}
}
