package dto

import (
	"time"

	"comanda/internal/domain"
)

type QueueEntryDTO struct {
	ItemDTO
	TableNumber    uint      `json:"tableNumber"`
	OrderCreatedAt time.Time `json:"orderCreatedAt"`
	OrderNote      *string   `json:"orderNote,omitempty"`
}

type QueueResponse struct {
	Origin string          `json:"origin"`
	Items  []QueueEntryDTO `json:"items"`
}

type BillItemDTO struct {
	ItemDTO
	TableNumber uint `json:"tableNumber"`
}

type BillResponse struct {
	TableNumber      uint          `json:"tableNumber"`
	Items            []BillItemDTO `json:"items"`
	Total            string        `json:"total"`
	OutstandingCount int           `json:"outstandingCount"`
	OpenedAt         *time.Time    `json:"openedAt,omitempty"`
	ClosedAt         *time.Time    `json:"closedAt,omitempty"`
}

type TableSummaryDTO struct {
	TableNumber      uint      `json:"tableNumber"`
	OpenedAt         time.Time `json:"openedAt"`
	OrderCount       int       `json:"orderCount"`
	ItemCount        int       `json:"itemCount"`
	UnpaidCount      int       `json:"unpaidCount"`
	BillableTotal    string    `json:"billableTotal"`
	OutstandingTotal string    `json:"outstandingTotal"`
}

type TablesResponse struct {
	Tables []TableSummaryDTO `json:"tables"`
}

type SettledTableDTO struct {
	TableNumber  uint      `json:"tableNumber"`
	LastClosedAt time.Time `json:"lastClosedAt"`
	BillCount    int       `json:"billCount"`
}

type SettledTablesResponse struct {
	Tables []SettledTableDTO `json:"tables"`
}

func NewQueueResponse(origin domain.Origin, entries []domain.QueueEntry) QueueResponse {
	items := make([]QueueEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, QueueEntryDTO{
			ItemDTO:        NewItemDTO(e.Item),
			TableNumber:    e.TableNumber,
			OrderCreatedAt: e.OrderCreatedAt,
			OrderNote:      e.OrderNote,
		})
	}
	return QueueResponse{Origin: string(origin), Items: items}
}

func NewBillResponse(b domain.Bill) BillResponse {
	items := make([]BillItemDTO, 0, len(b.Items))
	for _, i := range b.Items {
		items = append(items, BillItemDTO{ItemDTO: NewItemDTO(i.Item), TableNumber: i.TableNumber})
	}
	return BillResponse{
		TableNumber:      b.TableNumber,
		Items:            items,
		Total:            b.Total.StringFixed(2),
		OutstandingCount: b.OutstandingCount,
		OpenedAt:         b.OpenedAt,
		ClosedAt:         b.ClosedAt,
	}
}

func NewTablesResponse(summaries []domain.TableSummary) TablesResponse {
	tables := make([]TableSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		tables = append(tables, TableSummaryDTO{
			TableNumber:      s.TableNumber,
			OpenedAt:         s.OpenedAt,
			OrderCount:       s.OrderCount,
			ItemCount:        s.ItemCount,
			UnpaidCount:      s.UnpaidCount,
			BillableTotal:    s.BillableTotal.StringFixed(2),
			OutstandingTotal: s.OutstandingTotal.StringFixed(2),
		})
	}
	return TablesResponse{Tables: tables}
}

func NewSettledTablesResponse(settled []domain.SettledTable) SettledTablesResponse {
	tables := make([]SettledTableDTO, 0, len(settled))
	for _, s := range settled {
		tables = append(tables, SettledTableDTO{
			TableNumber:  s.TableNumber,
			LastClosedAt: s.LastClosedAt,
			BillCount:    s.BillCount,
		})
	}
	return SettledTablesResponse{Tables: tables}
}
