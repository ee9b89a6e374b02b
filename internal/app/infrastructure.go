package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prperemyshlev/easyped-service/internal/config"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/prperemyshlev/easyped-service/pkg/database"
	"github.com/prperemyshlev/easyped-service/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "easyped-service"

type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

// NewInfrastructure connects to Postgres and Redis, applies migrations when enabled
// and starts the meter provider. Whatever was opened is closed again on failure.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	i := &infrastructure{logger: logger}
	var closers []func() error
	fail := func(err error) (*infrastructure, error) {
		for n := len(closers) - 1; n >= 0; n-- {
			_ = closers[n]()
		}
		return nil, err
	}

	i.postgres, err = database.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		return fail(fmt.Errorf("failed to connect to PostgreSQL: %w", err))
	}
	closers = append(closers, i.postgres.Close)
	logger.Info("Connected to PostgreSQL",
		zap.String("host", cfg.Postgres.Host),
		zap.String("database", cfg.Postgres.DBName),
	)

	if cfg.Postgres.AutoMigrate {
		if err := repository.ApplyMigrations(i.postgres); err != nil {
			return fail(fmt.Errorf("failed to apply migrations: %w", err))
		}
		logger.Info("Database schema is up to date")
	}

	i.redis, err = database.NewRedis(ctx, database.RedisOptions{
		Addr:        cfg.Redis.Address(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.Timeout.Duration,
		IOTimeout:   cfg.Redis.Timeout.Duration,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to connect to Redis: %w", err))
	}
	closers = append(closers, i.redis.Close)
	logger.Info("Connected to Redis", zap.String("address", cfg.Redis.Address()))

	i.meterProvider, i.metricsHandler, err = observability.InitTelemetry(serviceName)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize telemetry: %w", err))
	}

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 3)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs)
}
