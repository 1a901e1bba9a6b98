package dto

import (
	"time"

	"comanda/internal/domain"
)

type OrderLineRequest struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	Note      *string `json:"note,omitempty"`
}

type CreateOrderRequest struct {
	TableNumber uint               `json:"tableNumber"`
	Items       []OrderLineRequest `json:"items"`
	Note        *string            `json:"note,omitempty"`
}

type AddItemsRequest struct {
	Items []OrderLineRequest `json:"items"`
}

type UpdateNoteRequest struct {
	Note *string `json:"note"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor,omitempty"`
}

type ItemDTO struct {
	ID           uint64     `json:"id"`
	OrderID      uint64     `json:"orderId"`
	ProductID    *uint      `json:"productId,omitempty"`
	ProductName  string     `json:"productName"`
	Quantity     int        `json:"quantity"`
	UnitPrice    string     `json:"unitPrice"`
	Subtotal     string     `json:"subtotal"`
	Origin       string     `json:"origin"`
	Status       string     `json:"status"`
	Paid         bool       `json:"paid"`
	PreparerName *string    `json:"preparerName,omitempty"`
	Note         *string    `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
}

type OrderDTO struct {
	ID          uint64     `json:"id"`
	TableNumber uint       `json:"tableNumber"`
	Status      string     `json:"status"`
	Note        *string    `json:"note,omitempty"`
	Total       string     `json:"total"`
	CreatedAt   time.Time  `json:"createdAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	Items       []ItemDTO  `json:"items"`
}

type OrderListResponse struct {
	Orders []OrderDTO `json:"orders"`
}

func NewItemDTO(i domain.Item) ItemDTO {
	return ItemDTO{
		ID:           i.ID,
		OrderID:      i.OrderID,
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice.StringFixed(2),
		Subtotal:     i.Subtotal().StringFixed(2),
		Origin:       string(i.Origin),
		Status:       string(i.Status),
		Paid:         i.Paid,
		PreparerName: i.PreparerName,
		Note:         i.Note,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
		PaidAt:       i.PaidAt,
	}
}

func NewOrderDTO(o domain.Order) OrderDTO {
	status := "open"
	if o.IsClosed() {
		status = "closed"
	}

	items := make([]ItemDTO, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, NewItemDTO(i))
	}

	return OrderDTO{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      status,
		Note:        o.Note,
		Total:       o.Total().StringFixed(2),
		CreatedAt:   o.CreatedAt,
		ClosedAt:    o.ClosedAt,
		Items:       items,
	}
}

func ToOrderLines(reqs []OrderLineRequest) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, domain.OrderLine{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Note:      r.Note,
		})
	}
	return lines
}
