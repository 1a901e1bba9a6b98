package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"comanda/internal/catalog"
	"comanda/internal/httpx"
	"comanda/internal/idempotency"
	"comanda/internal/infrastructure/logger"
	ordercontroller "comanda/internal/order/controller"
	settlementcontroller "comanda/internal/settlement/controller"
	tablecontroller "comanda/internal/table/controller"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Controllers struct {
	Catalog    *catalog.Controller
	Orders     *ordercontroller.OrderController
	Tables     *tablecontroller.TableController
	Settlement *settlementcontroller.SettlementController
}

type RouterConfig struct {
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
	Health         Pinger
}

// NewRouter mounts every station and cashier endpoint. Cashier payments
// honour Idempotency-Key so that a retried payment is answered from cache.
// Shift closure does not: a cached answer would skip the token check.
func NewRouter(c Controllers, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(log))

	r.Get("/health", health(cfg.Health, log))

	idem := idempotency.Middleware(cfg.Idempotency, cfg.IdempotencyTTL, log)

	r.Route("/api", func(r chi.Router) {
		r.Post("/catalog/search", c.Catalog.HandleSearchProducts)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", c.Orders.ListOrders)
			r.Post("/", c.Orders.CreateOrder)
			r.Get("/{orderId}", c.Orders.GetOrder)
			r.Post("/{orderId}/items", c.Orders.AddItems)
			r.Put("/{orderId}/note", c.Orders.UpdateNote)
		})
		r.Put("/items/{itemId}/status", c.Orders.TransitionItem)

		r.Get("/queues/{origin}", c.Tables.ListQueue)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", c.Tables.ListOpenTables)
			r.Get("/settled", c.Tables.ListSettledTables)
			r.Get("/{table}/bill", c.Tables.ListBillable)
			r.Post("/{table}/split", c.Settlement.SplitBill)
			r.With(idem).Post("/{table}/payment", c.Settlement.PayTable)
		})

		r.With(idem).Post("/payments/items", c.Settlement.PayItems)
		r.Get("/receipts", c.Settlement.ListReceipts)

		r.Route("/shift", func(r chi.Router) {
			r.Post("/close", c.Settlement.CloseShift)
			r.Get("/reports", c.Settlement.ListShiftReports)
			r.Get("/reports/{reportId}", c.Settlement.GetShiftReport)
		})
	})

	return r
}

func health(p Pinger, log *zap.Logger) http.HandlerFunc {
	rs := httpx.NewResponder(log)
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				log.Warn("health check failed", zap.Error(err))
				rs.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		rs.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
