package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShiftReport_GroupsByTable(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	closed := now.Add(-time.Hour)

	orders := []Order{
		{ID: 2, TableNumber: 7, CreatedAt: now.Add(-3 * time.Hour), Items: []Item{
			{ID: 3, Quantity: 1, UnitPrice: decimal.RequireFromString("12.00"), Status: ItemStatusPending},
		}},
		{ID: 1, TableNumber: 5, CreatedAt: now.Add(-4 * time.Hour), ClosedAt: &closed, Items: []Item{
			{ID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), Status: ItemStatusReady, Paid: true},
			{ID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00"), Status: ItemStatusReady, Paid: true},
		}},
	}

	report := NewShiftReport("shift-1", now, orders)

	assert.Equal(t, "shift-1", report.ID)
	assert.Equal(t, 2, report.OrderCount)
	assert.Equal(t, 3, report.ItemCount)
	require.Len(t, report.Tables, 2)
	assert.Equal(t, uint(5), report.Tables[0].TableNumber)
	assert.Equal(t, uint(7), report.Tables[1].TableNumber)
	assert.True(t, decimal.RequireFromString("25.00").Equal(report.PaidTotal))
	assert.True(t, decimal.RequireFromString("12.00").Equal(report.UnpaidTotal))
	assert.True(t, decimal.RequireFromString("37.00").Equal(report.GrandTotal))
	assert.False(t, report.IsEmpty())
}

func TestNewShiftReport_Empty(t *testing.T) {
	report := NewShiftReport("shift-2", time.Now(), nil)

	assert.True(t, report.IsEmpty())
	assert.Empty(t, report.Tables)
	assert.True(t, report.GrandTotal.IsZero())
}
