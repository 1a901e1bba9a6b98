package testutil

import (
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"comanda/internal/domain"
	"comanda/internal/infrastructure/migrations"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/comanda_test?parseTime=true&loc=UTC&clientFoundRows=true&multiStatements=true"

// TestDSN returns COMANDA_TEST_DSN or a local comanda_test database.
func TestDSN() string {
	if dsn := os.Getenv("COMANDA_TEST_DSN"); dsn != "" {
		return dsn
	}
	return defaultTestDSN
}

// SetupTestDB opens the test database and skips the test when MySQL is not
// reachable.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("mysql", TestDSN())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the embedded migrations.
func SetupTestTables(t *testing.T, db *sqlx.DB) {
	t.Helper()

	if err := migrations.Up(TestDSN()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	truncate(t, db)
}

// CleanupTestDB empties every table and closes the pool.
func CleanupTestDB(t *testing.T, db *sqlx.DB) {
	if db == nil {
		return
	}
	truncate(t, db)
	db.Close()
}

func truncate(t *testing.T, db *sqlx.DB) {
	tables := []string{
		"settlement_outbox", "settlement_records", "shift_reports",
		"order_items", "orders", "table_locks", "products",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedProduct inserts a catalog product and returns its id.
func SeedProduct(t *testing.T, db *sqlx.DB, name string, price string, origin domain.Origin, active bool) uint {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO products (name, price, origin, is_active) VALUES (?, ?, ?, ?)`,
		name, decimal.RequireFromString(price), string(origin), active,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read product id: %v", err)
	}
	return uint(id)
}
