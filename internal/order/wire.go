package order

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"comanda/internal/infrastructure/mysql"
	"comanda/internal/order/controller"
	orderrepo "comanda/internal/order/repository"
	"comanda/internal/order/service"
)

func NewModule(db *sqlx.DB, catalog service.ProductCatalog, logger *zap.Logger) *controller.OrderController {
	txm := mysql.NewTxManager(db)
	repo := orderrepo.NewMySQLOrderRepository(db)

	orderSvc := service.NewOrderService(txm, repo, catalog, logger)
	lifecycleSvc := service.NewLifecycleService(txm, repo, logger)

	return controller.NewOrderController(orderSvc, lifecycleSvc, logger)
}
