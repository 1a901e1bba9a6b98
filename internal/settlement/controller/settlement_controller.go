package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"
)

type PaymentService interface {
	PayItems(ctx context.Context, itemIDs []uint64) (*domain.ItemPayment, error)
	PayTable(ctx context.Context, tableNumber uint) (*domain.TablePayment, error)
	SplitBill(ctx context.Context, tableNumber uint, parts int) (*domain.Split, error)
	ListReceipts(ctx context.Context, tableNumber *uint, from, to *time.Time) ([]domain.SettlementRecord, error)
}

type ShiftService interface {
	Close(ctx context.Context, token string) (*domain.ShiftReport, error)
	GetReport(ctx context.Context, id string) (*domain.ShiftReport, error)
	ListReports(ctx context.Context) ([]domain.ShiftReport, error)
}

type SettlementController struct {
	payments PaymentService
	shifts   ShiftService
	rs       *httpx.Responder
	logger   *zap.Logger
}

func NewSettlementController(payments PaymentService, shifts ShiftService, logger *zap.Logger) *SettlementController {
	return &SettlementController{
		payments: payments,
		shifts:   shifts,
		rs:       httpx.NewResponder(logger),
		logger:   logger,
	}
}

func (c *SettlementController) PayItems(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	var req dto.PayItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	result, err := c.payments.PayItems(r.Context(), req.ItemIDs)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewPayItemsResponse(*result))
}

func (c *SettlementController) PayTable(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	table, err := httpx.PathTable(chi.URLParam(r, "table"))
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	result, err := c.payments.PayTable(r.Context(), table)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewPayTableResponse(*result))
}

func (c *SettlementController) SplitBill(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	table, err := httpx.PathTable(chi.URLParam(r, "table"))
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	var req dto.SplitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	split, err := c.payments.SplitBill(r.Context(), table, req.Parts)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewSplitResponse(*split))
}

func (c *SettlementController) ListReceipts(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	q := r.URL.Query()

	var table *uint
	if raw := q.Get("table"); raw != "" {
		n, err := httpx.PathTable(raw)
		if err != nil {
			c.rs.Error(w, traceID, err)
			return
		}
		table = &n
	}

	from, err := queryTime(q.Get("from"), "from")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}
	to, err := queryTime(q.Get("to"), "to")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	records, err := c.payments.ListReceipts(r.Context(), table, from, to)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.ReceiptsResponse{Receipts: records})
}

func (c *SettlementController) CloseShift(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	var req dto.ShiftCloseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}
	if !req.Confirm {
		c.rs.Validation(w, traceID, "shift closure must be confirmed", apperrors.ValidationDetail{
			Field:   "confirm",
			Message: "confirm must be true",
		})
		return
	}

	report, err := c.shifts.Close(r.Context(), req.Token)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.logger.Info("shift closed via api", zap.String("traceId", traceID), zap.String("reportId", report.ID))
	c.rs.JSON(w, http.StatusOK, report)
}

func (c *SettlementController) ListShiftReports(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	reports, err := c.shifts.ListReports(r.Context())
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewShiftReportsResponse(reports))
}

func (c *SettlementController) GetShiftReport(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	report, err := c.shifts.GetReport(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, report)
}

// queryTime accepts RFC 3339 timestamps or Unix seconds.
func queryTime(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.Unix(sec, 0).UTC()
		return &t, nil
	}
	return nil, apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
		Field:   field,
		Message: field + " must be an RFC 3339 timestamp",
	})
}
