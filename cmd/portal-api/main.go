package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/auth"
	"crediario/portal-backend/internal/config"
	"crediario/portal-backend/internal/contracts"
	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/payments"
	"crediario/portal-backend/internal/reports"
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
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	keyed := locks.NewKeyedMutex()

	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger)
	authHandler := auth.NewHandler(authService)

	customersRepo := customers.NewRepository(db)
	customersService := customers.NewService(customersRepo, logger)
	customersHandler := customers.NewHandler(customersService)

	salesRepo := sales.NewRepository(db)
	salesService := sales.NewService(salesRepo, customersRepo, keyed, logger)
	salesHandler := sales.NewHandler(salesService)

	paymentsRepo := payments.NewRepository(db)
	paymentsService := payments.NewService(paymentsRepo, keyed, logger)
	paymentsHandler := payments.NewHandler(paymentsService)

	contractsService := contracts.NewService(salesService, customersRepo, cfg.Server.StoreName, logger)
	contractsHandler := contracts.NewHandler(contractsService)

	reportsRepo := reports.NewRepository(db)
	reportsService := reports.NewService(reportsRepo, logger)
	reportsHandler := reports.NewHandler(reportsService)

	if os.Getenv("APP_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	authed := api.Group("", auth.Middleware(authService))
	{
		authHandler.RegisterRoutes(api, authed)
		customersHandler.RegisterRoutes(authed)
		salesHandler.RegisterRoutes(authed)
		paymentsHandler.RegisterRoutes(authed)
		contractsHandler.RegisterRoutes(authed)
		reportsHandler.RegisterRoutes(authed)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
