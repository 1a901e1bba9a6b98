package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"comanda/internal/domain"
)

type productRow struct {
	ID       uint            `gorm:"primaryKey"`
	Name     string          `gorm:"size:255"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2)"`
	Origin   string          `gorm:"type:enum('kitchen','bar','other')"`
	IsActive bool
}

func (productRow) TableName() string {
	return "products"
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Origin:   domain.ParseOrigin(r.Origin),
		IsActive: r.IsActive,
	}
}

// GormRepository reads the catalog through gorm, sharing the service's pool.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(sqlDB *sql.DB) (*GormRepository, error) {
	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog repository: %w", err)
	}
	return &GormRepository{db: gdb}, nil
}

// FindByIDs returns products with the given ids, active or not, ordered by id.
func (r *GormRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []productRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}
