package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digistore/internal/config"
	"digistore/internal/handler"
	"digistore/internal/middleware"
	"digistore/internal/notify"
	"digistore/internal/repository/postgres"
	"digistore/internal/server"
	"digistore/internal/service"
	"digistore/internal/session"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Digi Store Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.Int("admins", len(cfg.AdminIDs)),
		zap.Bool("alternate_payment", cfg.AlternatePaymentEnabled()),
	)
	if len(cfg.AdminIDs) == 0 {
		logger.Warn("ADMIN_IDS is empty, nobody will receive review requests")
	}

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		Client: &http.Client{Timeout: 30 * time.Second},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			logger.Error("Bot handler error", fields...)
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize services
	notifier := notify.NewTelegram(bot, cfg.AdminIDs, logger)
	sessions := session.NewStore()
	pricer := service.NewPricer(cfg.Pricing)

	authService := service.NewAuthService(userRepo, cfg.AdminIDs)
	orderService := service.NewOrderService(orderRepo, notifier, logger)
	statsService := service.NewStatsService(orderRepo, logger)
	adminService := service.NewAdminService(authService, orderService, statsService, logger)
	intakeService := service.NewIntakeService(sessions, pricer, orderService, cfg.AlternatePaymentEnabled(), logger)

	// Initialize handler
	bot.Use(
		middleware.RecoverMiddleware(logger),
		middleware.LoggerMiddleware(logger),
		middleware.RegisterUserMiddleware(authService, logger),
	)

	h := handler.NewHandler(
		bot,
		intakeService,
		orderService,
		adminService,
		pricer,
		handler.Storefront{
			CardNumber:    cfg.CardNumber,
			SupportUser:   cfg.SupportUser,
			ReputationURL: cfg.ReputationURL,
			NewsURL:       cfg.NewsURL,
		},
		cfg.RequestTimeout,
		logger,
	)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start session sweeper in background
	go runSessionSweeper(ctx, sessions, cfg.SessionTTL, logger)

	// Start ops server if configured
	var opsServer *server.Server
	if cfg.HTTPAddr != "" {
		opsServer = server.New(cfg.HTTPAddr, db, logger)
		go func() {
			if err := opsServer.Start(); err != nil {
				logger.Error("Ops server failed", zap.Error(err))
			}
		}()
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := opsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("Failed to stop ops server", zap.Error(err))
		}
		shutdownCancel()
	}

	logger.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// runSessionSweeper drops intake conversations idle for longer than ttl
func runSessionSweeper(ctx context.Context, sessions *session.Store, ttl time.Duration, logger *zap.Logger) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session sweeper stopped")
			return
		case <-ticker.C:
			if dropped := sessions.Sweep(ttl); dropped > 0 {
				logger.Info("Expired idle sessions",
					zap.Int("dropped", dropped),
					zap.Int("active", sessions.Len()),
				)
			}
		}
	}
}
