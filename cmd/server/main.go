package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loanledger/internal/adapters/http/middleware"
	"loanledger/internal/adapters/http/routes"
	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/config"
	"loanledger/internal/core/services"
	"loanledger/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "loanledger/docs" // Swagger docs
)

// @title Loan Ledger API
// @version 1.0
// @description Loan records, payments and audit trail with role-based access.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level: cfg.Log.Level,
		Dev:   cfg.IsDev(),
		File:  cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Amounts are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database migration completed")

	if err := config.NewSeeder(db, cfg.Seed, log).Run(ctx); err != nil {
		log.Warn("seeding skipped", zap.Error(err))
	}

	// Optional shared rate-limit storage
	var storage fiber.Storage
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisStorage := middleware.NewRedisStorage(client, "loanledger:limiter:")
		defer redisStorage.Close()
		storage = redisStorage
		log.Info("rate limiter using redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Daily portfolio report
	reports := services.NewReportService(
		repositories.NewLoanRepository(db),
		repositories.NewUserRepository(db),
		log,
	)
	cronService := services.NewCronService(reports, cfg.ReportCron, log)
	if err := cronService.Start(); err != nil {
		return fmt.Errorf("start cron: %w", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Loan Ledger API v1.0",
		ErrorHandler: middleware.NewErrorHandler(log),
	})

	middleware.Setup(app, cfg, storage)
	routes.Setup(app, db, cfg, log, storage)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	}()

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
