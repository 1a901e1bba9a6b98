package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/domain"
	"comanda/internal/errors"
	"comanda/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sqlx.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

var now = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, repo *MySQLOrderRepository, table uint, items ...domain.Item) uint64 {
	t.Helper()
	ctx := context.Background()

	id, err := repo.InsertOrder(ctx, table, nil, now)
	require.NoError(t, err)
	_, err = repo.InsertItems(ctx, id, items, now)
	require.NoError(t, err)
	return id
}

func burger() domain.Item {
	return domain.Item{ProductName: "Burger", Quantity: 2, UnitPrice: decimal.RequireFromString("32.00"), Origin: domain.OriginKitchen}
}

func beer() domain.Item {
	return domain.Item{ProductName: "Beer", Quantity: 1, UnitPrice: decimal.RequireFromString("12.50"), Origin: domain.OriginBar}
}

func TestOrderRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 4, burger(), beer())

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, uint(4), order.TableNumber)
	assert.Nil(t, order.ClosedAt)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Burger", order.Items[0].ProductName)
	assert.Equal(t, domain.ItemStatusPending, order.Items[0].Status)
	assert.False(t, order.Items[0].Paid)
	assert.Nil(t, order.Items[0].PreparerName)
	assert.Equal(t, domain.OriginBar, order.Items[1].Origin)
	assert.True(t, order.Total().Equal(decimal.RequireFromString("76.50")))
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	order, err := repo.FindByID(context.Background(), 9999)
	assert.Nil(t, order)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestOrderRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	open := seedOrder(t, repo, 1, burger())
	closed := seedOrder(t, repo, 2, beer())
	_, err := db.Exec(`UPDATE orders SET closed_at = ? WHERE id = ?`, now, closed)
	require.NoError(t, err)

	orders, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open, orders[0].ID)
	assert.Len(t, orders[0].Items, 1)

	orders, err = repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderRepository_UpdateNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 1, burger())

	note := "no onions"
	require.NoError(t, repo.UpdateNote(context.Background(), id, &note))

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, order.Note)
	assert.Equal(t, note, *order.Note)

	err = repo.UpdateNote(context.Background(), 9999, &note)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderRepository_CompareAndSetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := seedOrder(t, repo, 1, burger())
	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	itemID := order.Items[0].ID
	ctx := context.Background()

	ana, bruno := "Ana", "Bruno"

	ok, err := repo.CompareAndSetStatus(ctx, itemID, domain.ItemStatusPending, domain.ItemStatusPreparing, &ana, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Lost race: the item is no longer pending.
	ok, err = repo.CompareAndSetStatus(ctx, itemID, domain.ItemStatusPending, domain.ItemStatusPreparing, &bruno, now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.CompareAndSetStatus(ctx, itemID, domain.ItemStatusPreparing, domain.ItemStatusReady, &bruno, now)
	require.NoError(t, err)
	assert.True(t, ok)

	item, err := repo.FindItemByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusReady, item.Status)
	require.NotNil(t, item.PreparerName)
	assert.Equal(t, "Ana", *item.PreparerName)

	_, err = db.Exec(`UPDATE order_items SET paid = 1 WHERE id = ?`, itemID)
	require.NoError(t, err)
	ok, err = repo.CompareAndSetStatus(ctx, itemID, domain.ItemStatusReady, domain.ItemStatusReady, nil, now)
	require.NoError(t, err)
	assert.False(t, ok, "paid items never change")
}

func TestOrderRepository_FindItemByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	_, err := repo.FindItemByID(context.Background(), 12345)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}
