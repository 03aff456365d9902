package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/middlewares"
	"github.com/sbilibin2017/pf-wallet/internal/repositories"
	"github.com/sbilibin2017/pf-wallet/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// The worker materializes due recurring transactions and evaluates goals on
// a fixed interval. It shares the database with the HTTP service and runs
// each user's recurring batch in its own transaction.
func main() {
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("worker stopped with error: %v", err)
	}
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

type config struct {
	LogLevel string

	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDB       string

	KafkaAddr  string
	KafkaTopic string

	IntervalSecond int
}

// parseConfig loads environment variables from a file and returns the worker
// configuration.
func parseConfig(path string) (config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var cfg config
	var err error

	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return cfg, err
	}

	cfg.KafkaAddr = getEnv("KAFKA_ADDR", "")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "notifications")

	if cfg.IntervalSecond, err = strconv.Atoi(getEnv("WORKER_INTERVAL_SECOND", "3600")); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// run connects to the database, wires the services and loops until a signal
// arrives. Every tick materializes due recurring transactions for all users
// and re-evaluates active goals.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	var eventWriter services.KafkaWriter
	if cfg.KafkaAddr != "" {
		kafkaWriter := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaAddr),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
		eventWriter = kafkaWriter
	}

	txGetter := middlewares.GetTxFromContext

	walletReadRepo := repositories.NewWalletReadRepository(db, txGetter)
	walletWriteRepo := repositories.NewWalletWriteRepository(db, txGetter)
	transactionReadRepo := repositories.NewTransactionReadRepository(db, txGetter)
	transactionWriteRepo := repositories.NewTransactionWriteRepository(db, txGetter)
	categoryReadRepo := repositories.NewCategoryReadRepository(db, txGetter)
	goalReadRepo := repositories.NewGoalReadRepository(db, txGetter)
	goalWriteRepo := repositories.NewGoalWriteRepository(db, txGetter)
	recurringReadRepo := repositories.NewRecurringReadRepository(db, txGetter)
	recurringWriteRepo := repositories.NewRecurringWriteRepository(db, txGetter)
	notificationReadRepo := repositories.NewNotificationReadRepository(db)
	notificationWriteRepo := repositories.NewNotificationWriteRepository(db)

	notificationService := services.NewNotificationService(notificationWriteRepo, notificationReadRepo, eventWriter)
	goalService := services.NewGoalService(
		goalReadRepo, goalWriteRepo, transactionReadRepo, notificationReadRepo, notificationService)
	recurringService := services.NewRecurringService(
		recurringReadRepo, recurringWriteRepo, walletReadRepo, categoryReadRepo, transactionWriteRepo, walletWriteRepo)

	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// One user's batch per transaction: a failed user rolls back alone and
	// the rest of the run continues.
	runUser := func(ctx context.Context, userID uuid.UUID) error {
		return middlewares.WithTransaction(ctx, db, func(ctx context.Context) error {
			result, err := recurringService.RunDue(ctx, userID)
			if err != nil {
				return err
			}
			logger.Log.Infow("recurring run finished",
				"userID", userID,
				"materialized", len(result.Materialized),
				"skipped", len(result.Skipped),
			)
			return nil
		})
	}

	tick := func(ctx context.Context) {
		if err := recurringService.RunDueAll(ctx, runUser); err != nil {
			logger.Log.Errorw("recurring run failed", "error", err)
		}
		if err := goalService.CheckAll(ctx); err != nil {
			logger.Log.Errorw("goal check failed", "error", err)
		}
	}

	interval := time.Duration(cfg.IntervalSecond) * time.Second
	logger.Log.Infof("Worker started, interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick(ctxShutdown)

	for {
		select {
		case <-ctxShutdown.Done():
			logger.Log.Info("Shutdown signal received, stopping worker...")
			return nil
		case <-ticker.C:
			tick(ctxShutdown)
		}
	}
}
