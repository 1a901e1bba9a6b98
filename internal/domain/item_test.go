package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "comanda/internal/errors"
)

func TestItem_Subtotal(t *testing.T) {
	item := Item{
		ID:        1,
		OrderID:   100,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("29.99"),
	}

	assert.True(t, decimal.RequireFromString("89.97").Equal(item.Subtotal()))
}

func TestItem_Billable(t *testing.T) {
	assert.True(t, Item{Status: ItemStatusReady}.Billable())
	assert.False(t, Item{Status: ItemStatusReady, Paid: true}.Billable())
	assert.False(t, Item{Status: ItemStatusPreparing}.Billable())
	assert.False(t, Item{Status: ItemStatusPending}.Billable())
}

func TestItemStatus_Next(t *testing.T) {
	next, ok := ItemStatusPending.Next()
	assert.True(t, ok)
	assert.Equal(t, ItemStatusPreparing, next)

	next, ok = ItemStatusPreparing.Next()
	assert.True(t, ok)
	assert.Equal(t, ItemStatusReady, next)

	_, ok = ItemStatusReady.Next()
	assert.False(t, ok)
}

func TestParseItemStatus(t *testing.T) {
	st, ok := ParseItemStatus(" Preparing ")
	assert.True(t, ok)
	assert.Equal(t, ItemStatusPreparing, st)

	_, ok = ParseItemStatus("em_preparo")
	assert.False(t, ok)
}

func TestParseOrigin(t *testing.T) {
	assert.Equal(t, OriginKitchen, ParseOrigin("kitchen"))
	assert.Equal(t, OriginBar, ParseOrigin("BAR"))
	assert.Equal(t, OriginOther, ParseOrigin("dessert counter"))
	assert.True(t, OriginKitchen.IsStation())
	assert.False(t, OriginOther.IsStation())
}

func TestItem_ValidateTransition(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		target   ItemStatus
		actor    string
		wantKind string
	}{
		{"pending to preparing with actor", Item{ID: 1, Status: ItemStatusPending}, ItemStatusPreparing, "Joao", ""},
		{"preparing to ready", Item{ID: 1, Status: ItemStatusPreparing}, ItemStatusReady, "", ""},
		{"pending to preparing without actor", Item{ID: 1, Status: ItemStatusPending}, ItemStatusPreparing, "  ", "validation"},
		{"pending to ready skips a step", Item{ID: 1, Status: ItemStatusPending}, ItemStatusReady, "", "transition"},
		{"ready to preparing regresses", Item{ID: 1, Status: ItemStatusReady}, ItemStatusPreparing, "Ana", "transition"},
		{"preparing to preparing repeats", Item{ID: 1, Status: ItemStatusPreparing}, ItemStatusPreparing, "Ana", "transition"},
		{"ready has no successor", Item{ID: 1, Status: ItemStatusReady}, ItemStatusReady, "", "transition"},
		{"paid item is frozen", Item{ID: 1, Status: ItemStatusReady, Paid: true}, ItemStatusReady, "", "transition"},
		{"unknown target", Item{ID: 1, Status: ItemStatusPending}, ItemStatus("served"), "", "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.ValidateTransition(tt.target, tt.actor)

			switch tt.wantKind {
			case "":
				assert.NoError(t, err)
			case "validation":
				_, ok := apperrors.IsValidationError(err)
				assert.True(t, ok, "expected validation error, got %v", err)
			case "transition":
				_, ok := apperrors.IsInvalidTransitionError(err)
				assert.True(t, ok, "expected invalid transition error, got %v", err)
			}
		})
	}
}
