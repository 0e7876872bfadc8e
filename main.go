package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eartalk/internal/aiclient"
	"eartalk/internal/cache"
	"eartalk/internal/config"
	"eartalk/internal/handlers"
	"eartalk/internal/mailer"
	"eartalk/internal/middleware"
	"eartalk/internal/models"
	"eartalk/internal/oauth"
	"eartalk/internal/repositories"
	"eartalk/internal/services"
	"eartalk/internal/storage"
	"eartalk/pkg/logger"
	"eartalk/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

// dependencies are the external resources the HTTP app is built on.
// redis and publisher are optional.
type dependencies struct {
	db        *gorm.DB
	redis     *redis.Client
	publisher services.AudioEventPublisher
	mailer    services.PasswordMailer
	providers []oauth.Provider
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logging ---
	lg, err := logger.New(logger.Options{
		Level:    cfg.LogLevel,
		Pretty:   cfg.LogPretty,
		FileRoot: cfg.LogfileRoot,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()
	log := lg.Logger

	// --- Database ---
	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	deps := dependencies{
		db: db,
		mailer: mailer.New(mailer.Config{
			Host:     cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			From:     cfg.SenderEmail,
		}),
		providers: oauthProviders(cfg),
	}

	// --- Optional Redis cache ---
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(context.Background(), cache.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, audio cache disabled")
		} else {
			defer rdb.Close()
			deps.redis = rdb
		}
	}

	// --- Optional RabbitMQ publisher ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, audio events disabled")
		} else {
			defer mqClient.Close()
			deps.publisher = mqClient
		}
	}

	app := newApp(cfg, log, lg.Writer, deps)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server gracefully stopped")
}

// openDatabase connects to postgres, or to sqlite for a "sqlite:<path>" URL,
// and migrates the schema.
func openDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.UsesSQLite() {
		dialector = sqlite.Open(cfg.SQLitePath())
	} else {
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	gormLog := log.With().Str("component", "gorm").Logger()
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(&gormLog, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Audio{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

func oauthProviders(cfg *config.Config) []oauth.Provider {
	creds := func(c config.OAuthClient) oauth.Credentials {
		return oauth.Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RedirectURI: c.RedirectURI}
	}
	return []oauth.Provider{
		oauth.NewKakaoProvider(creds(cfg.Kakao)),
		oauth.NewNaverProvider(creds(cfg.Naver)),
		oauth.NewGoogleProvider(creds(cfg.Google)),
	}
}

// newApp wires repositories, services and handlers into a Fiber app.
func newApp(cfg *config.Config, log zerolog.Logger, accessLog io.Writer, deps dependencies) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.db)
	audioRepo := repositories.NewGORMAudioRepository(deps.db)

	// --- Services ---
	var audioOpts []services.AudioOption
	if deps.publisher != nil {
		audioOpts = append(audioOpts, services.WithEventPublisher(deps.publisher))
	}
	if deps.redis != nil {
		audioOpts = append(audioOpts, services.WithAudioCache(cache.NewAudioCache(deps.redis, cfg.AudioCacheTTL)))
	}

	tokenService := services.NewTokenService(cfg.SecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(userRepo, deps.mailer, log)
	oauthService := services.NewOAuthService(deps.providers, userService, tokenService, log)
	audioService := services.NewAudioService(
		audioRepo,
		userRepo,
		aiclient.New(cfg.AIRequestURL, cfg.AIRequestTimeout),
		storage.NewPathAllocator(cfg.MediaDir),
		storage.NewReferences(cfg.DefaultRefAudioDir),
		log,
		audioOpts...,
	)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, tokenService, oauthService, log)
	userHandler := handlers.NewUserHandler(userService, audioService, log)
	audioHandler := handlers.NewAudioHandler(audioService, log)
	healthHandler := handlers.NewHealthHandler(deps.db, deps.redis)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: accessLog}))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// --- Routes ---
	authHandler.RegisterRoutes(app)
	userHandler.RegisterRoutes(app, middleware.AuthRequired(tokenService, log))
	audioHandler.RegisterRoutes(app, middleware.OptionalAuth(tokenService, log))
	healthHandler.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static(cfg.MediaURL, cfg.MediaDir)

	return app
}
