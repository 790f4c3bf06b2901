package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qfsvault/qfs_vault_app/internal/adapters/database/pgsql"
	"github.com/qfsvault/qfs_vault_app/internal/core/services"
	"github.com/qfsvault/qfs_vault_app/internal/core/workers"
	"github.com/qfsvault/qfs_vault_app/internal/handlers"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
	"github.com/qfsvault/qfs_vault_app/pkg/config"
	"github.com/qfsvault/qfs_vault_app/pkg/database"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Public routes
	r.GET("/health", handlers.GetHome)

	// rootCtx bounds the settlement timer goroutines and the recovery sweep.
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	setupAPIV1Routes(rootCtx, r, cfg, dbPool, logger)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations before the server starts
// serving traffic.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations.
	// Using pgx/v5/stdlib driver to be compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func setupAPIV1Routes(rootCtx context.Context, r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	accountRepo := pgsql.NewPgxAccountRepository(dbPool)
	txnRepo := pgsql.NewPgxTransactionRepository(dbPool)
	verificationRepo := pgsql.NewPgxVerificationRepository(dbPool)

	notifier := services.NewChangeNotifier(accountRepo, txnRepo)
	rates := services.NewStaticRateConverter()

	accountService := services.NewAccountService(accountRepo)
	settlementService := services.NewSettlementService(rootCtx, accountRepo, txnRepo, rates, notifier, cfg.SettlementDelay)
	verificationService := services.NewVerificationService(accountRepo, verificationRepo)

	// Recovery sweep picks up pending withdrawals whose in-process timer was
	// lost to a restart.
	sweeper := workers.NewSettlementSweeper(txnRepo, settlementService, cfg.SweepInterval, logger)
	go sweeper.Run(rootCtx)

	accountHandler := handlers.NewAccountHandler(accountService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	streamHandler := handlers.NewStreamHandler(notifier)

	accounts := v1.Group("/accounts")
	{
		accounts.POST("/", accountHandler.CreateAccount)
		accounts.GET("/:accountID", accountHandler.GetAccount)
		accounts.GET("/:accountID/deposits/address", accountHandler.GetDepositAddress)
		accounts.GET("/:accountID/stream", streamHandler.StreamAccount)

		accounts.POST("/:accountID/deposits", settlementHandler.Deposit)
		accounts.POST("/:accountID/withdrawals", settlementHandler.Withdraw)
		accounts.GET("/:accountID/transactions", settlementHandler.ListTransactions)

		accounts.POST("/:accountID/verification", verificationHandler.SubmitVerification)
		accounts.GET("/:accountID/verification", verificationHandler.GetVerificationStatus)
	}
}
