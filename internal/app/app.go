package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/easyped-service/internal/config"
	"github.com/prperemyshlev/easyped-service/internal/handler"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/prperemyshlev/easyped-service/internal/service"
	"github.com/prperemyshlev/easyped-service/internal/utils"
	"github.com/prperemyshlev/easyped-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres(), cfg.Store.OperationTimeout.Duration)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry.Duration)

	patientMetrics, err := observability.NewPatientMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("failed to create patient metrics: %w", err)
	}

	publicViews := service.NewRedisPublicViewCache(infra.Redis(), cfg.Cache.PublicViewTTL.Duration)
	qr := service.NewQRRenderer(cfg.Frontend.URL, cfg.Frontend.PublicPath, cfg.Frontend.QRSize)

	authService := service.NewAuthService(repos.User, jwtManager, utils.NewPasswordHasher(cfg.Security.BCryptCost), logger)
	patientService := service.NewPatientService(repos.Patient, publicViews, qr, patientMetrics, logger)

	healthChecker := NewHealthChecker(map[string]Pinger{
		"postgres": infra.Postgres(),
		"redis":    infra.Redis(),
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	router.GET("/metrics", observability.PrometheusHandler(infra.MetricsHandler()))

	api := router.Group("/api")
	api.GET("/health", healthChecker.Live)
	api.GET("/ready", healthChecker.Ready)

	handler.RegisterRoutes(api,
		handler.NewAuthHandler(authService, logger),
		handler.NewPatientHandler(patientService, logger),
		authService,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts down
func (a *App) Run(ctx context.Context) error {
	logger := a.infra.Logger()
	serveErr := make(chan error, 1)

	go func() {
		logger.Info("Application starting",
			zap.String("addr", a.server.Addr),
			zap.String("env", a.config.Env),
		)

		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	var runErr error
	select {
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error("HTTP server failed", zap.Error(runErr))
		}
	case <-ctx.Done():
		logger.Info("Shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	}

	return errors.Join(runErr, a.Shutdown())
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// drain in-flight requests before their dependencies go away
	serverErr := a.server.Shutdown(ctx)
	if serverErr != nil {
		a.infra.Logger().Error("HTTP server shutdown failed", zap.Error(serverErr))
	}

	return errors.Join(serverErr, a.infra.Shutdown(ctx))
}
