package catalog

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"comanda/internal/catalog/repository"
)

// NewModule wires the catalog lookup. The service is also handed to order
// intake for product snapshots.
func NewModule(db *sqlx.DB, logger *zap.Logger) (*Controller, Service, error) {
	repo, err := repository.NewGormRepository(db.DB)
	if err != nil {
		return nil, nil, err
	}
	svc := NewService(repo)
	uc := NewSearchUseCase(svc)
	return NewController(uc, logger), svc, nil
}
