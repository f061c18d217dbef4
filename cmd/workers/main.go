package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/config"
	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/payments"
	"crediario/portal-backend/internal/sales"
	"crediario/portal-backend/pkg/locks"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	if os.Getenv("APP_ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	salesService := sales.NewService(
		sales.NewRepository(db),
		customers.NewRepository(db),
		locks.NewKeyedMutex(),
		logger,
	)
	worker := NewStatusWorker(salesService, payments.NewRepository(db), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Worker.StatusRefreshCron, func() {
		worker.Run(ctx)
	}); err != nil {
		logger.Fatal("Invalid status refresh schedule",
			zap.String("cron", cfg.Worker.StatusRefreshCron), zap.Error(err))
	}

	// One pass on startup so a restart never waits a full day.
	worker.Run(ctx)

	scheduler.Start()
	logger.Info("Workers started", zap.String("status_refresh_cron", cfg.Worker.StatusRefreshCron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down workers...")
	cancel()
	<-scheduler.Stop().Done()
	logger.Info("Workers exiting")
}
