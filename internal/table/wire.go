package table

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"comanda/internal/table/controller"
	tablerepo "comanda/internal/table/repository"
	"comanda/internal/table/service"
)

func NewModule(db *sqlx.DB, logger *zap.Logger) *controller.TableController {
	repo := tablerepo.NewMySQLTableRepository(db)
	agg := service.NewAggregator(repo, logger)
	return controller.NewTableController(agg, logger)
}
