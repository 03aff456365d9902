package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/pf-wallet/internal/facades"
	"github.com/sbilibin2017/pf-wallet/internal/handlers"
	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/middlewares"
	"github.com/sbilibin2017/pf-wallet/internal/repositories"
	"github.com/sbilibin2017/pf-wallet/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title pf-wallet API
// @version 1.0.0
// @description Personal finance service: wallets, transactions, transfers, budgets and recurring payments
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// config holds all application, database, Redis, Kafka, rates-API, logging
// and JWT configuration.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	KafkaAddr  string
	KafkaTopic string

	RatesAPIURL        string
	RatesAPITimeoutSec int
	RateCacheTTLSec    int

	JWTSecretKey string
	JWTExpSecond int
}

// parseConfig loads environment variables from a file and returns the
// application configuration.
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

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return cfg, err
	}
	if cfg.PGMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return cfg, err
	}
	if cfg.PGMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return cfg, err
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return cfg, err
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return cfg, err
	}
	if cfg.RedisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return cfg, err
	}

	// Kafka config; an empty address disables event publishing
	cfg.KafkaAddr = getEnv("KAFKA_ADDR", "")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "notifications")

	// Rates API config
	cfg.RatesAPIURL = getEnv("RATES_API_URL", "http://localhost:9090")
	if cfg.RatesAPITimeoutSec, err = strconv.Atoi(getEnv("RATES_API_TIMEOUT_SECOND", "5")); err != nil {
		return cfg, err
	}
	if cfg.RateCacheTTLSec, err = strconv.Atoi(getEnv("RATE_CACHE_TTL_SECOND", "300")); err != nil {
		return cfg, err
	}

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// run initializes the logger, database, Redis, Kafka and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Errorw("Redis connection error", "error", err)
		return err
	}
	defer rdb.Close()

	// Kafka writer for notification events
	var kafkaWriter *kafka.Writer
	if cfg.KafkaAddr != "" {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaAddr),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
	}

	// Initialize JWT service
	tokener := jwt.New(cfg.JWTSecretKey, time.Duration(cfg.JWTExpSecond)*time.Second)

	// Initialize repositories
	txGetter := middlewares.GetTxFromContext

	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	walletReadRepo := repositories.NewWalletReadRepository(db, txGetter)
	walletWriteRepo := repositories.NewWalletWriteRepository(db, txGetter)
	transactionReadRepo := repositories.NewTransactionReadRepository(db, txGetter)
	transactionWriteRepo := repositories.NewTransactionWriteRepository(db, txGetter)
	categoryReadRepo := repositories.NewCategoryReadRepository(db, txGetter)
	categoryWriteRepo := repositories.NewCategoryWriteRepository(db, txGetter)
	goalReadRepo := repositories.NewGoalReadRepository(db, txGetter)
	goalWriteRepo := repositories.NewGoalWriteRepository(db, txGetter)
	recurringReadRepo := repositories.NewRecurringReadRepository(db, txGetter)
	recurringWriteRepo := repositories.NewRecurringWriteRepository(db, txGetter)
	rateReadRepo := repositories.NewExchangeRateReadRepository(db)
	rateWriteRepo := repositories.NewExchangeRateWriteRepository(db)
	rateCacheRepo := repositories.NewExchangeRateCacheRepository(rdb, time.Duration(cfg.RateCacheTTLSec)*time.Second)
	notificationReadRepo := repositories.NewNotificationReadRepository(db)
	notificationWriteRepo := repositories.NewNotificationWriteRepository(db)

	// External rates API client
	ratesClient := facades.NewRatesClient(cfg.RatesAPIURL, time.Duration(cfg.RatesAPITimeoutSec)*time.Second)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokener)
	rateService := services.NewRateService(rateReadRepo, rateWriteRepo, rateCacheRepo, ratesClient)
	walletService := services.NewWalletService(walletReadRepo, walletWriteRepo, rateService)
	categoryService := services.NewCategoryService(categoryReadRepo, categoryWriteRepo, categoryReadRepo)
	transactionService := services.NewTransactionService(
		transactionReadRepo, transactionWriteRepo, walletReadRepo, categoryReadRepo, walletWriteRepo)
	transferService := services.NewTransferService(
		walletReadRepo, transactionWriteRepo, categoryReadRepo, walletWriteRepo, rateService)
	var eventWriter services.KafkaWriter
	if kafkaWriter != nil {
		eventWriter = kafkaWriter
	}
	notificationService := services.NewNotificationService(notificationWriteRepo, notificationReadRepo, eventWriter)
	goalService := services.NewGoalService(
		goalReadRepo, goalWriteRepo, transactionReadRepo, notificationReadRepo, notificationService)
	recurringService := services.NewRecurringService(
		recurringReadRepo, recurringWriteRepo, walletReadRepo, categoryReadRepo, transactionWriteRepo, walletWriteRepo)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/register", handlers.NewRegisterHandler(authService))
	r.Post("/login", handlers.NewLoginHandler(authService))

	// Protected routes with JWT middleware
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokener))

		// Read-only routes
		r.Get("/wallets", handlers.NewListWalletsHandler(walletService, tokener))
		r.Get("/wallets/{walletID}", handlers.NewGetWalletHandler(walletService, tokener))
		r.Get("/wallets/{walletID}/balance", handlers.NewGetBalanceHandler(walletService, tokener))
		r.Get("/transactions", handlers.NewListTransactionsHandler(transactionService, tokener))
		r.Get("/categories", handlers.NewListCategoriesHandler(categoryService, tokener))
		r.Get("/goals", handlers.NewListGoalsHandler(goalService, tokener))
		r.Get("/goals/{goalID}/status", handlers.NewGoalStatusHandler(goalService, tokener))
		r.Get("/recurring", handlers.NewListRecurringHandler(recurringService, tokener))
		r.Get("/rates", handlers.NewGetRatesHandler(rateService, tokener))
		r.Get("/notifications", handlers.NewListNotificationsHandler(notificationService, tokener))

		// Mutating routes run inside a database transaction
		r.Group(func(r chi.Router) {
			r.Use(middlewares.TxMiddleware(db))

			r.Post("/wallets", handlers.NewCreateWalletHandler(walletService, tokener))
			r.Put("/wallets/{walletID}", handlers.NewUpdateWalletHandler(walletService, tokener))
			r.Delete("/wallets/{walletID}", handlers.NewDeleteWalletHandler(walletService, tokener))
			r.Post("/transfer", handlers.NewTransferHandler(transferService, tokener))
			r.Post("/transactions", handlers.NewCreateTransactionHandler(transactionService, tokener))
			r.Put("/transactions/{transactionID}", handlers.NewUpdateTransactionHandler(transactionService, tokener))
			r.Delete("/transactions/{transactionID}", handlers.NewDeleteTransactionHandler(transactionService, tokener))
			r.Post("/categories", handlers.NewCreateCategoryHandler(categoryService, tokener))
			r.Delete("/categories/{categoryID}", handlers.NewDeleteCategoryHandler(categoryService, tokener))
			r.Post("/goals", handlers.NewCreateGoalHandler(goalService, tokener))
			r.Put("/goals/{goalID}", handlers.NewUpdateGoalHandler(goalService, tokener))
			r.Delete("/goals/{goalID}", handlers.NewDeleteGoalHandler(goalService, tokener))
			r.Post("/recurring", handlers.NewCreateRecurringHandler(recurringService, tokener))
			r.Put("/recurring/{recurringID}", handlers.NewUpdateRecurringHandler(recurringService, tokener))
			r.Delete("/recurring/{recurringID}", handlers.NewDeleteRecurringHandler(recurringService, tokener))
			r.Post("/recurring/run", handlers.NewRunRecurringHandler(recurringService, tokener))
			r.Post("/rates/refresh", handlers.NewRefreshRatesHandler(rateService, tokener))
			r.Post("/notifications/{notificationID}/read", handlers.NewReadNotificationHandler(notificationService, tokener))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
