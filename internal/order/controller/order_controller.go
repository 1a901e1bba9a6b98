package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"
)

type OrderService interface {
	CreateOrder(ctx context.Context, tableNumber uint, lines []domain.OrderLine, note *string) (*domain.Order, error)
	AddItems(ctx context.Context, orderID uint64, lines []domain.OrderLine) (*domain.Order, error)
	UpdateNote(ctx context.Context, orderID uint64, note *string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	ListOrders(ctx context.Context, includeClosed bool) ([]domain.Order, error)
}

type LifecycleService interface {
	Transition(ctx context.Context, itemID uint64, target domain.ItemStatus, actor string) (*domain.Item, error)
}

type OrderController struct {
	orders    OrderService
	lifecycle LifecycleService
	rs        *httpx.Responder
	logger    *zap.Logger
}

func NewOrderController(orders OrderService, lifecycle LifecycleService, logger *zap.Logger) *OrderController {
	return &OrderController{
		orders:    orders,
		lifecycle: lifecycle,
		rs:        httpx.NewResponder(logger),
		logger:    logger,
	}
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	var req dto.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	order, err := c.orders.CreateOrder(r.Context(), req.TableNumber, dto.ToOrderLines(req.Items), req.Note)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusCreated, dto.NewOrderDTO(*order))
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	includeClosed := false
	if raw := r.URL.Query().Get("include_closed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.rs.Validation(w, traceID, "invalid include_closed", apperrors.ValidationDetail{
				Field:   "include_closed",
				Message: "include_closed must be true or false",
			})
			return
		}
		includeClosed = v
	}

	orders, err := c.orders.ListOrders(r.Context(), includeClosed)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	resp := dto.OrderListResponse{Orders: make([]dto.OrderDTO, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderDTO(o))
	}
	c.rs.JSON(w, http.StatusOK, resp)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	orderID, err := httpx.PathUint(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	order, err := c.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewOrderDTO(*order))
}

func (c *OrderController) AddItems(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	orderID, err := httpx.PathUint(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	var req dto.AddItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	order, err := c.orders.AddItems(r.Context(), orderID, dto.ToOrderLines(req.Items))
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewOrderDTO(*order))
}

func (c *OrderController) UpdateNote(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	orderID, err := httpx.PathUint(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	var req dto.UpdateNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	order, err := c.orders.UpdateNote(r.Context(), orderID, req.Note)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewOrderDTO(*order))
}

func (c *OrderController) TransitionItem(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	itemID, err := httpx.PathUint(chi.URLParam(r, "itemId"), "itemId")
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	var req dto.TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	target, ok := domain.ParseItemStatus(req.Status)
	if !ok {
		c.rs.Validation(w, traceID, "invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, preparing, ready",
		})
		return
	}

	item, err := c.lifecycle.Transition(r.Context(), itemID, target, req.Actor)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, dto.NewItemDTO(*item))
}
