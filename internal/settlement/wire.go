package settlement

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"comanda/internal/config"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/settlement/controller"
	settlementrepo "comanda/internal/settlement/repository"
	"comanda/internal/settlement/service"
	tablerepo "comanda/internal/table/repository"
)

// Artifacts is the file store used for receipts and shift reports.
type Artifacts interface {
	service.ReceiptStore
	service.ReportStore
}

type Module struct {
	Controller *controller.SettlementController
	Relay      *service.OutboxRelay
}

func NewModule(db *sqlx.DB, artifacts Artifacts, publisher service.Publisher, auth service.Authorizer, relayCfg config.RelayConfig, logger *zap.Logger) *Module {
	txm := mysql.NewTxManager(db)
	repo := settlementrepo.NewMySQLSettlementRepository(db)
	bills := tablerepo.NewMySQLTableRepository(db)

	payments := service.NewPaymentService(txm, repo, bills, logger)
	relay := service.NewOutboxRelay(txm, repo, artifacts, publisher, relayCfg.BatchSize, relayCfg.Interval, logger)
	shifts := service.NewShiftService(txm, repo, artifacts, relay, auth, logger)

	return &Module{
		Controller: controller.NewSettlementController(payments, shifts, logger),
		Relay:      relay,
	}
}
