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

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"user-directory-service/internal/api"
	"user-directory-service/internal/cache"
	"user-directory-service/internal/config"
	"user-directory-service/internal/events"
	"user-directory-service/internal/password"
	"user-directory-service/internal/repository"
	"user-directory-service/internal/service"
	"user-directory-service/migrations"
)

func connectDB(ctx context.Context, dialect repository.Dialect, dsn string) (*sql.DB, error) {
	dsn, err := repository.NormalizeDSN(dialect, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			log.Info().Str("driver", string(dialect)).Msg("Connected to DB")
			return db, nil
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB", i+1)
		time.Sleep(3 * time.Second)
	}
	_ = db.Close()
	return nil, fmt.Errorf("failed to connect to DB after retries: %w", err)
}

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := repository.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database driver")
	}

	db, err := connectDB(ctx, dialect, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer db.Close()

	if err := migrations.AutoMigrateUsers(ctx, 3, dialect, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate users table")
	}

	var opts []service.Option
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewRedisUserCache(rdb, cfg.RedisTTL)))
		log.Info().Str("addr", cfg.RedisAddr).Msg("User cache enabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer publisher.Close()
		opts = append(opts, service.WithEventPublisher(publisher))
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("User events enabled")
	}

	// Initialize UserService
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, password.NewBcryptHasher(cfg.BcryptCost), opts...)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	// Routes
	if err := api.RegisterRoutes(e, api.NewUserHandler(userService), api.NewPageHandler(userService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	go func() {
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
