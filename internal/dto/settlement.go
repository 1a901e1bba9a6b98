package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
)

type PayItemsRequest struct {
	ItemIDs []uint64 `json:"itemIds"`
}

type PayItemsResponse struct {
	Updated      int                       `json:"updated"`
	PaidTotal    string                    `json:"paidTotal"`
	Skipped      int                       `json:"skipped"`
	SkippedIDs   []uint64                  `json:"skippedIds"`
	ClosedTables []uint                    `json:"closedTables"`
	Settlements  []domain.SettlementRecord `json:"settlements"`
}

type PayTableResponse struct {
	TableNumber uint                     `json:"tableNumber"`
	Paid        int                      `json:"paid"`
	PaidTotal   string                   `json:"paidTotal"`
	Outstanding int                      `json:"outstanding"`
	Closed      bool                     `json:"closed"`
	Settlement  *domain.SettlementRecord `json:"settlement,omitempty"`
}

type SplitRequest struct {
	Parts int `json:"parts"`
}

type SplitResponse struct {
	TableNumber uint     `json:"tableNumber"`
	Total       string   `json:"total"`
	Parts       int      `json:"parts"`
	PerPart     string   `json:"perPart"`
	Allocation  []string `json:"allocation"`
}

type ReceiptsResponse struct {
	Receipts []domain.SettlementRecord `json:"receipts"`
}

type ShiftCloseRequest struct {
	Token   string `json:"token"`
	Confirm bool   `json:"confirm"`
}

type ShiftReportSummaryDTO struct {
	ID         string    `json:"id"`
	ClosedAt   time.Time `json:"closedAt"`
	OrderCount int       `json:"orderCount"`
	ItemCount  int       `json:"itemCount"`
	GrandTotal string    `json:"grandTotal"`
	Location   string    `json:"location"`
}

type ShiftReportsResponse struct {
	Reports []ShiftReportSummaryDTO `json:"reports"`
}

func NewSplitResponse(s domain.Split) SplitResponse {
	allocation := make([]string, 0, len(s.Allocation))
	for _, a := range s.Allocation {
		allocation = append(allocation, a.StringFixed(2))
	}
	return SplitResponse{
		TableNumber: s.TableNumber,
		Total:       s.Total.StringFixed(2),
		Parts:       s.Parts,
		PerPart:     perPartString(s.PerPart),
		Allocation:  allocation,
	}
}

// perPartString prints cents unless the share carries sub-cent digits.
func perPartString(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

func NewShiftReportsResponse(reports []domain.ShiftReport) ShiftReportsResponse {
	out := make([]ShiftReportSummaryDTO, 0, len(reports))
	for _, r := range reports {
		out = append(out, ShiftReportSummaryDTO{
			ID:         r.ID,
			ClosedAt:   r.ClosedAt,
			OrderCount: r.OrderCount,
			ItemCount:  r.ItemCount,
			GrandTotal: r.GrandTotal.StringFixed(2),
			Location:   r.Location,
		})
	}
	return ShiftReportsResponse{Reports: out}
}

func NewPayItemsResponse(p domain.ItemPayment) PayItemsResponse {
	return PayItemsResponse{
		Updated:      p.Updated,
		PaidTotal:    p.PaidTotal.StringFixed(2),
		Skipped:      len(p.SkippedIDs),
		SkippedIDs:   p.SkippedIDs,
		ClosedTables: p.ClosedTables(),
		Settlements:  p.Settlements,
	}
}

func NewPayTableResponse(p domain.TablePayment) PayTableResponse {
	return PayTableResponse{
		TableNumber: p.TableNumber,
		Paid:        p.Paid,
		PaidTotal:   p.PaidTotal.StringFixed(2),
		Outstanding: p.Outstanding,
		Closed:      p.Closed(),
		Settlement:  p.Settlement,
	}
}
