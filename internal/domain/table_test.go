package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBill_OnlyReadyUnpaidItems(t *testing.T) {
	opened := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	later := opened.Add(15 * time.Minute)

	items := []BillItem{
		{Item: Item{ID: 1, OrderID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), Status: ItemStatusReady}, OrderCreatedAt: opened},
		{Item: Item{ID: 2, OrderID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00"), Status: ItemStatusPending}, OrderCreatedAt: opened},
		{Item: Item{ID: 3, OrderID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("7.00"), Status: ItemStatusReady, Paid: true}, OrderCreatedAt: later},
		{Item: Item{ID: 4, OrderID: 2, Quantity: 3, UnitPrice: decimal.RequireFromString("1.50"), Status: ItemStatusReady, Origin: OriginOther}, OrderCreatedAt: later},
	}

	bill := NewBill(5, items)

	require.Len(t, bill.Items, 2)
	assert.Equal(t, uint64(1), bill.Items[0].ID)
	assert.Equal(t, uint64(4), bill.Items[1].ID)
	assert.True(t, decimal.RequireFromString("24.50").Equal(bill.Total))
	assert.Equal(t, 1, bill.OutstandingCount)
	require.NotNil(t, bill.OpenedAt)
	assert.Equal(t, opened, *bill.OpenedAt)
	assert.Nil(t, bill.ClosedAt)
}

func TestNewBill_Empty(t *testing.T) {
	bill := NewBill(9, nil)

	assert.Empty(t, bill.Items)
	assert.True(t, bill.Total.IsZero())
	assert.Nil(t, bill.OpenedAt)
}

func TestNewTableSummaries(t *testing.T) {
	opened := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	earlier := opened.Add(-30 * time.Minute)

	items := []BillItem{
		{Item: Item{ID: 1, OrderID: 10, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), Status: ItemStatusReady}, TableNumber: 7, OrderCreatedAt: opened},
		{Item: Item{ID: 2, OrderID: 10, Quantity: 1, UnitPrice: decimal.RequireFromString("4.00"), Status: ItemStatusPreparing}, TableNumber: 7, OrderCreatedAt: opened},
		{Item: Item{ID: 3, OrderID: 11, Quantity: 1, UnitPrice: decimal.RequireFromString("6.00"), Status: ItemStatusReady, Paid: true}, TableNumber: 7, OrderCreatedAt: earlier},
		{Item: Item{ID: 4, OrderID: 12, Quantity: 1, UnitPrice: decimal.RequireFromString("3.00"), Status: ItemStatusPending}, TableNumber: 2, OrderCreatedAt: opened},
	}

	summaries := NewTableSummaries(items)

	require.Len(t, summaries, 2)
	assert.Equal(t, uint(2), summaries[0].TableNumber)
	assert.True(t, summaries[0].BillableTotal.IsZero())
	assert.True(t, decimal.RequireFromString("3.00").Equal(summaries[0].OutstandingTotal))

	seven := summaries[1]
	assert.Equal(t, uint(7), seven.TableNumber)
	assert.Equal(t, earlier, seven.OpenedAt)
	assert.Equal(t, 2, seven.OrderCount)
	assert.Equal(t, 3, seven.ItemCount)
	assert.Equal(t, 2, seven.UnpaidCount)
	assert.True(t, decimal.RequireFromString("20.00").Equal(seven.BillableTotal))
	assert.True(t, decimal.RequireFromString("24.00").Equal(seven.OutstandingTotal))
}

func TestNewTableSummaries_Empty(t *testing.T) {
	assert.Empty(t, NewTableSummaries(nil))
}
