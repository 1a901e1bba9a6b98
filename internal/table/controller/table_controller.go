package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	"comanda/internal/httpx"
)

type TableService interface {
	ListQueue(ctx context.Context, origin domain.Origin) ([]domain.QueueEntry, error)
	ListBillable(ctx context.Context, tableNumber uint) (*domain.Bill, error)
	ListOpenTables(ctx context.Context) ([]domain.TableSummary, error)
	ListSettledTables(ctx context.Context) ([]domain.SettledTable, error)
}

type TableController struct {
	tables TableService
	rs     *httpx.Responder
	logger *zap.Logger
}

func NewTableController(tables TableService, logger *zap.Logger) *TableController {
	return &TableController{
		tables: tables,
		rs:     httpx.NewResponder(logger),
		logger: logger,
	}
}

func (c *TableController) ListQueue(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	origin := domain.Origin(chi.URLParam(r, "origin"))

	entries, err := c.tables.ListQueue(r.Context(), origin)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewQueueResponse(origin, entries))
}

func (c *TableController) ListBillable(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	table, err := httpx.PathTable(chi.URLParam(r, "table"))
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	bill, err := c.tables.ListBillable(r.Context(), table)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewBillResponse(*bill))
}

func (c *TableController) ListOpenTables(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	summaries, err := c.tables.ListOpenTables(r.Context())
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewTablesResponse(summaries))
}

func (c *TableController) ListSettledTables(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	settled, err := c.tables.ListSettledTables(r.Context())
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewSettledTablesResponse(settled))
}
