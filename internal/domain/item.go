package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "comanda/internal/errors"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
)

// Origin is the production station responsible for an item.
type Origin string

const (
	OriginKitchen Origin = "kitchen"
	OriginBar     Origin = "bar"
	OriginOther   Origin = "other"
)

func ParseItemStatus(s string) (ItemStatus, bool) {
	switch st := ItemStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady:
		return st, true
	}
	return "", false
}

// Next returns the immediate successor of s. Ready has none.
func (s ItemStatus) Next() (ItemStatus, bool) {
	switch s {
	case ItemStatusPending:
		return ItemStatusPreparing, true
	case ItemStatusPreparing:
		return ItemStatusReady, true
	}
	return "", false
}

func (s ItemStatus) rank() int {
	switch s {
	case ItemStatusPending:
		return 0
	case ItemStatusPreparing:
		return 1
	case ItemStatusReady:
		return 2
	}
	return -1
}

// ParseOrigin maps free text onto the closed origin set. Anything that is not
// a production station becomes OriginOther.
func ParseOrigin(s string) Origin {
	switch o := Origin(strings.ToLower(strings.TrimSpace(s))); o {
	case OriginKitchen, OriginBar:
		return o
	}
	return OriginOther
}

// IsStation reports whether o has a production queue.
func (o Origin) IsStation() bool {
	return o == OriginKitchen || o == OriginBar
}

type Item struct {
	ID           uint64
	OrderID      uint64
	ProductID    *uint
	ProductName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	Origin       Origin
	Status       ItemStatus
	Paid         bool
	PreparerName *string
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PaidAt       *time.Time
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Billable reports whether the item can be paid right now.
func (i Item) Billable() bool {
	return i.Status == ItemStatusReady && !i.Paid
}

// ValidateTransition checks target against the item's persisted state.
// Moving to preparing requires the preparer's name.
func (i Item) ValidateTransition(target ItemStatus, actor string) error {
	if target.rank() < 0 {
		return apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of pending, preparing, ready",
		})
	}

	if i.Paid {
		return apperrors.NewInvalidTransitionError(
			fmt.Sprintf("item %d is already paid", i.ID), string(i.Status), string(target))
	}

	next, ok := i.Status.Next()
	if !ok || next != target {
		msg := fmt.Sprintf("item %d cannot move from %s to %s", i.ID, i.Status, target)
		if target.rank() <= i.Status.rank() {
			msg = fmt.Sprintf("item %d cannot regress from %s to %s", i.ID, i.Status, target)
		}
		return apperrors.NewInvalidTransitionError(msg, string(i.Status), string(target))
	}

	if target == ItemStatusPreparing && strings.TrimSpace(actor) == "" {
		return apperrors.NewValidationError("preparer is required", apperrors.ValidationDetail{
			Field:   "actor",
			Message: "actor is required when moving an item to preparing",
		})
	}

	return nil
}
