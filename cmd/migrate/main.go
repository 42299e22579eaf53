package main

import (
	"flag"
	"fmt"
	"os"

	"loanledger/internal/adapters/persistence/migrations"
	"loanledger/internal/config"
	"loanledger/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "apply n migrations (negative rolls back); overrides -direction")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Dev: cfg.IsDev()})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.Driver == "sqlite" {
		log.Info("sqlite schema is managed by auto migrate; nothing to do")
		return nil
	}

	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	m, err := migrations.New(cfg.Database.Driver, sqlDB)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := migrations.Apply(m, *direction, *steps); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Info("migrations applied; schema is empty")
		return nil
	}
	log.Info("migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.String("database", cfg.Database.Target()),
	)
	return nil
}
