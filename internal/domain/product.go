package domain

import "github.com/shopspring/decimal"

// Product is the catalog view used when snapshotting order items.
type Product struct {
	ID       uint
	Name     string
	Price    decimal.Decimal
	Origin   Origin
	IsActive bool
}
