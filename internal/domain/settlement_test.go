package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "comanda/internal/errors"
)

func billItem(id, orderID uint64, qty int, price string, createdAt time.Time) BillItem {
	return BillItem{
		Item: Item{
			ID:          id,
			OrderID:     orderID,
			ProductName: "product",
			Quantity:    qty,
			UnitPrice:   decimal.RequireFromString(price),
			Status:      ItemStatusReady,
			Paid:        true,
		},
		TableNumber:    5,
		OrderCreatedAt: createdAt,
	}
}

func TestNewSettlementRecord_Totals(t *testing.T) {
	first := time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)
	second := first.Add(30 * time.Minute)
	settledAt := second.Add(time.Hour)

	rec := NewSettlementRecord("rec-1", 5, []BillItem{
		billItem(1, 10, 2, "10.00", first),
		billItem(2, 11, 1, "5.00", second),
	}, settledAt)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, uint(5), rec.TableNumber)
	assert.Equal(t, []uint64{10, 11}, rec.OrderIDs)
	require.Len(t, rec.Lines, 2)
	assert.True(t, decimal.RequireFromString("20.00").Equal(rec.Lines[0].Subtotal))
	assert.True(t, decimal.RequireFromString("25.00").Equal(rec.Total))
	assert.Equal(t, first, rec.OpenedAt)
	assert.Equal(t, settledAt, rec.SettledAt)
}

func TestNewSplit_EvenParts(t *testing.T) {
	split, err := NewSplit(5, decimal.RequireFromString("30.00"), 3)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("10.00").Equal(split.PerPart))
	assert.Len(t, split.Allocation, 3)
	for _, part := range split.Allocation {
		assert.True(t, decimal.RequireFromString("10.00").Equal(part))
	}
}

func TestNewSplit_RemainderCents(t *testing.T) {
	total := decimal.RequireFromString("10.00")
	split, err := NewSplit(5, total, 3)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("3.33").Equal(split.PerPart))
	assert.True(t, decimal.RequireFromString("3.34").Equal(split.Allocation[0]))
	assert.True(t, decimal.RequireFromString("3.33").Equal(split.Allocation[1]))

	sum := decimal.Zero
	for _, part := range split.Allocation {
		sum = sum.Add(part)
	}
	assert.True(t, total.Equal(sum))

	diff := split.PerPart.Mul(decimal.NewFromInt(3)).Sub(total).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")))
}

func TestNewSplit_PerPartWithinOneCent(t *testing.T) {
	totals := []string{"25.00", "99.99", "47.35", "120.10", "0.05", "100.02", "0.02", "0.10", "10.06", "1234.57"}
	for _, raw := range totals {
		for parts := 2; parts <= 12; parts++ {
			total := decimal.RequireFromString(raw)
			split, err := NewSplit(1, total, parts)
			require.NoError(t, err)

			diff := split.PerPart.Mul(decimal.NewFromInt(int64(parts))).Sub(total).Abs()
			assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
				"total %s parts %d per part %s", raw, parts, split.PerPart)

			sum := decimal.Zero
			for _, part := range split.Allocation {
				sum = sum.Add(part)
			}
			assert.True(t, total.Equal(sum), "total %s parts %d", raw, parts)
		}
	}
}

func TestNewSplit_PerPartKeepsExtraDigitsWhenCentsDrift(t *testing.T) {
	split, err := NewSplit(1, decimal.RequireFromString("100.02"), 4)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25.005").Equal(split.PerPart), split.PerPart.String())

	split, err = NewSplit(1, decimal.RequireFromString("10.06"), 12)
	require.NoError(t, err)
	diff := split.PerPart.Mul(decimal.NewFromInt(12)).Sub(decimal.RequireFromString("10.06")).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")), split.PerPart.String())

	split, err = NewSplit(1, decimal.RequireFromString("30.00"), 3)
	require.NoError(t, err)
	assert.Equal(t, "10.00", split.PerPart.StringFixed(2))
}

func TestNewSplit_Invalid(t *testing.T) {
	_, err := NewSplit(5, decimal.RequireFromString("30.00"), 1)
	_, ok := apperrors.IsInvalidSplitError(err)
	assert.True(t, ok)

	_, err = NewSplit(5, decimal.Zero, 2)
	_, ok = apperrors.IsInvalidSplitError(err)
	assert.True(t, ok)
}
