package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	appControllers "github.com/RUFFNER25/sistema-de-certificados/internal/app/controllers"
	appMigrations "github.com/RUFFNER25/sistema-de-certificados/internal/app/migrations"
	appRepos "github.com/RUFFNER25/sistema-de-certificados/internal/app/repositories"
	appRoutes "github.com/RUFFNER25/sistema-de-certificados/internal/app/routes"
	appServices "github.com/RUFFNER25/sistema-de-certificados/internal/app/services"
	"github.com/RUFFNER25/sistema-de-certificados/internal/config"
	"github.com/RUFFNER25/sistema-de-certificados/internal/db"
	appMiddleware "github.com/RUFFNER25/sistema-de-certificados/internal/middleware"
	pkgAuth "github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/filestorage"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/helpers"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/ratelimit"
	"github.com/RUFFNER25/sistema-de-certificados/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                 *appRepos.Repositories
	Services              *appServices.Services
	AuthController        *appControllers.AuthController
	CertificateController *appControllers.CertificateController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	JWTService            *pkgAuth.JWTService
	FileStorage           *filestorage.LocalStorage
	LoginLimiter          *ratelimit.SlidingWindowLimiter
	Metrics               *metrics.Metrics
	Sweeper               *filestorage.Sweeper
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	logger.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the admin account.
func SetupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	logger.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)
	if err := migrator.Migrate(ctx); err != nil {
		logger.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	logger.Info().Msg("Database migrations successfully applied.")

	// A protected operation can never succeed without at least one admin.
	if err := seed.EnsureAdmin(ctx, dbPool, cfg); err != nil {
		logger.Error().Err(err).Msg("Failed to seed admin account")
		dbPool.Close()
		return nil, fmt.Errorf("admin seeding failed: %w", err)
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// supporting infrastructure.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(dbPool)

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.StagingPath, cfg.Server.FilesURLPrefix)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    helpers.ParseDuration(cfg.JWT.TokenExpiration, 8*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.Metrics = metrics.NewDefault()
	deps.LoginLimiter = ratelimit.NewSlidingWindowLimiter(
		cfg.Login.MaxAttempts,
		helpers.ParseDuration(cfg.Login.AttemptWindow, 15*time.Minute),
	)

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, storage, deps.Metrics)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.CertificateController = appControllers.NewCertificateController(deps.Services.CertificateService)

	// Orphan sweeper is opt-in: a zero interval disables it.
	sweepInterval := helpers.ParseDuration(cfg.Storage.SweepInterval, 0)
	if sweepInterval > 0 {
		deps.Sweeper = filestorage.NewSweeper(storage, deps.Repos.CertificateRepository, sweepInterval)
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CertificateController,
		deps.AuthMiddleware,
		deps.LoginLimiter,
		deps.Metrics,
		cfg.Server.FilesURLPrefix,
		cfg.Server.StoragePath,
	)

	return router
}
