package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	_ "github.com/portfoliohub/backend/docs"
	"github.com/portfoliohub/backend/internal/auth/password"
	"github.com/portfoliohub/backend/internal/auth/revocation"
	"github.com/portfoliohub/backend/internal/auth/service"
	"github.com/portfoliohub/backend/internal/auth/totp"
	"github.com/portfoliohub/backend/internal/config"
	"github.com/portfoliohub/backend/internal/handlers"
	"github.com/portfoliohub/backend/internal/logger"
	sharedMiddleware "github.com/portfoliohub/backend/internal/middlewares"
	"github.com/portfoliohub/backend/internal/notifications"
	"github.com/portfoliohub/backend/internal/repositories"
	"github.com/portfoliohub/backend/internal/services"
	"go.uber.org/zap"
)

// @title Portfolio API
// @version 1.0
// @description API for the portfolio site: registration with two-factor authentication, login, and portfolio item management

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Portfolio API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize auth primitives
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	hasher := password.NewHasher(cfg.Security.BcryptCost)
	twoFactor := totp.NewEngine(cfg.Security.TOTPIssuer, cfg.Security.TOTPSkew)
	revocationStore := revocation.NewStore(rdb)
	notifier := notifications.NewQueueNotifier(asynqClient, logger.Logger)
	metrics := sharedMiddleware.NewMetrics()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	portfolioRepo := repositories.NewPortfolioRepository(db, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, hasher, twoFactor, tokenGenerator, revocationStore, notifier, metrics, logger.Logger)
	portfolioService := services.NewPortfolioService(portfolioRepo, notifier, logger.Logger)
	adminService := services.NewAdminService(userRepo, hasher, logger.Logger)

	// Seed the administrator; a failure here must not keep the API down
	if _, err := adminService.EnsureAdmin(ctx, services.AdminAccount{
		Username:  cfg.Admin.Username,
		Password:  cfg.Admin.Password,
		Email:     cfg.Admin.Email,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}); err != nil {
		logger.Logger.Error("Failed to initialize admin account", zap.Error(err))
	}

	r := setupRouter(routerDeps{
		logger:           logger.Logger,
		tokenGenerator:   tokenGenerator,
		users:            userRepo,
		revoked:          revocationStore,
		authService:      authService,
		portfolioService: portfolioService,
		metrics:          metrics,
		healthChecks: map[string]handlers.HealthCheck{
			"database": db.PingContext,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		allowedOrigins:       cfg.CORS.AllowedOrigins,
		swaggerURL:           fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port),
		rateLimit:            100,
		credentialsRateLimit: 10,
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies pending schema migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "portfolio_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
