package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/config"
	"github.com/tekiplanet/safejet-processing-deposit/internal/coordinator"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/blockchain"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/ledger"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "failed to initialize redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	logger.Info(context.Background(), "connected to postgres via gorm")

	walletRepo := repositories.NewWalletRepository(db)
	cachedWallets := repositories.NewCachedWalletDirectory(walletRepo, cfg.WalletTTL)
	tokenRepo := repositories.NewTokenRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)
	balanceRepo := repositories.NewBalanceRepository(db)
	uow := repositories.NewUnitOfWork(db)

	applier := ledger.New(uow, depositRepo, tokenRepo, balanceRepo)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	clientFactory := blockchain.NewClientFactory()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitors, adapters := buildMonitors(ctx, cfg, clientFactory, cachedWallets, tokenRepo, depositRepo, checkpointRepo, applier, metrics)
	coord := coordinator.New(monitors)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := coord.Run(ctx); err != nil {
			logger.Error(context.Background(), "coordinator exited with error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cachedWallets.WatchInvalidations(ctx); err != nil && ctx.Err() == nil {
			logger.Error(context.Background(), "wallet cache invalidation watcher stopped", zap.Error(err))
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	registerRoutes(r, coord, adapters, registry)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(context.Background(), "http server shutdown error", zap.Error(err))
		}
	}()

	logger.Info(context.Background(), "deposit tracker starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("targets", len(monitors)),
	)

	if err := runServer(srv); err != nil && err != http.ErrServerClosed {
		cancel()
		wg.Wait()
		return fmt.Errorf("failed to start server: %w", err)
	}

	wg.Wait()
	return nil
}

func logWiring(message string, target entities.Target, err error) {
	fields := []zap.Field{
		zap.String("chain", target.Chain.String()),
		zap.String("network", target.Network.String()),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		logger.Error(context.Background(), message, fields...)
		return
	}
	logger.Info(context.Background(), message, fields...)
}
