package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"comanda/internal/auth"
	"comanda/internal/catalog"
	"comanda/internal/config"
	"comanda/internal/idempotency"
	"comanda/internal/infrastructure/artifacts"
	"comanda/internal/infrastructure/broker"
	"comanda/internal/infrastructure/logger"
	"comanda/internal/infrastructure/migrations"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/infrastructure/redis"
	"comanda/internal/order"
	"comanda/internal/server"
	"comanda/internal/settlement"
	"comanda/internal/table"
)

func main() {
	configPath := os.Getenv("COMANDA_CONFIG")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(mysql.DSN(cfg.Database)); err != nil {
			zapLogger.Fatal("applying migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied")
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var idemStore idempotency.Store = idempotency.NewMemoryStore()
	if cfg.Redis.URL != "" {
		redisStore, err := redis.Initialize(cfg.Redis.URL)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer redisStore.Close()
		idemStore = redisStore
		zapLogger.Info("redis connected")
	}

	publisher, err := broker.New(cfg.Broker, zapLogger)
	if err != nil {
		zapLogger.Fatal("connecting to broker", zap.Error(err), zap.String("kind", cfg.Broker.Kind))
	}
	defer publisher.Close()

	files, err := artifacts.NewFileStore(cfg.Artifacts.Dir)
	if err != nil {
		zapLogger.Fatal("opening artifact store", zap.Error(err))
	}

	authorizer, err := auth.NewAuthorizer(cfg.Admin)
	if err != nil {
		zapLogger.Fatal("configuring admin token", zap.Error(err))
	}

	catalogCtrl, catalogSvc, err := catalog.NewModule(db, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating catalog", zap.Error(err))
	}
	orderCtrl := order.NewModule(db, catalogSvc, zapLogger)
	tableCtrl := table.NewModule(db, zapLogger)
	settlementMod := settlement.NewModule(db, files, publisher, authorizer, cfg.Relay, zapLogger)

	router := server.NewRouter(server.Controllers{
		Catalog:    catalogCtrl,
		Orders:     orderCtrl,
		Tables:     tableCtrl,
		Settlement: settlementMod.Controller,
	}, server.RouterConfig{
		Idempotency:    idemStore,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Health:         db,
	}, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		settlementMod.Relay.Run(relayCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	stopRelay()
	<-relayDone

	zapLogger.Info("server stopped gracefully")
}
