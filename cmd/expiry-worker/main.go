package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	subscriptionsService "github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(2)
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	stopCh := make(chan struct{})
	defer close(stopCh)

	wrappedDB := dbmetrics.WrapWithDefault(db, nil, cfg.Metrics.ServiceName, stopCh)
	subscriptionsSvc := subscriptionsService.NewService(
		customerRepo.NewRepository(wrappedDB),
		cfg.Subscriptions.FreeBookingLimit,
		log,
	)

	interval := time.Duration(cfg.Subscriptions.ExpiryIntervalSeconds) * time.Second
	log.Info("Subscription expiry worker started (interval=%s)", interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Первый проход сразу после старта
	runOnce(ctx, subscriptionsSvc, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("Subscription expiry worker stopped")
			return
		case <-ticker.C:
			runOnce(ctx, subscriptionsSvc, log)
		}
	}
}

func runOnce(ctx context.Context, svc *subscriptionsService.Service, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ids, err := svc.ExpireDue(ctx)
	if err != nil {
		log.Error("ExpireDue failed: %v", err)
		return
	}
	log.Debug("ExpireDue: %d subscriptions expired", len(ids))
}
