package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	careerv1 "github.com/godilite/career-predictor/api/v1"
	"github.com/godilite/career-predictor/internal/config"
	handler "github.com/godilite/career-predictor/internal/grpc"
	"github.com/godilite/career-predictor/internal/metrics"
	"github.com/godilite/career-predictor/internal/model"
	"github.com/godilite/career-predictor/internal/repository"
	"github.com/godilite/career-predictor/internal/service"
	"github.com/godilite/career-predictor/pkg/cache"
	dbbuilder "github.com/godilite/career-predictor/pkg/database"
	grpcsrv "github.com/godilite/career-predictor/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger        *zap.Logger
	dbPool        *sql.DB
	cache         *cache.Cache
	grpcServer    *grpcsrv.Server
	metricsServer *http.Server
}

// NewApp wires the application. Redis is optional: when it cannot be reached the
// service runs without a read cache.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	classifier, err := model.New(cfg.Model())
	if err != nil {
		return nil, fmt.Errorf("model init failed: %w", err)
	}
	logger.Info("Model transport configured",
		zap.String("transport", cfg.ModelTransport),
		zap.Duration("timeout", cfg.ModelTimeout))

	if cfg.DBDriver == "sqlite3" && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		// sqlite allows one writer at a time
		dbbuilder.WithMaxOpenConns(1),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	repo := repository.NewPredictionRepository(dbPool)
	if err := repo.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, err
	}

	var cacher handler.Cacher
	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithKeyPrefix("career:"),
	)
	if err != nil {
		logger.Warn("Cache unavailable, serving without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		cacher = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	predictionService := service.NewPredictionService(classifier, logger,
		service.WithTimeout(cfg.ModelTimeout),
		service.WithMetrics(metrics.New(registry)),
	)

	grpcHandlers := handler.NewGRPCHandlers(predictionService, repo, cacher, logger, cfg.CacheTTL,
		handler.WithErrorDetails(!cfg.IsProduction()),
	)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithMetrics(registry),
	)
	if err != nil {
		if cacheClient != nil {
			cacheClient.Close()
		}
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(careerv1.ServiceName, func(s *grpc.Server) {
		careerv1.RegisterCareerPredictionServer(s, grpcHandlers)
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, registry)
	}

	return &App{
		logger:        logger,
		dbPool:        dbPool,
		cache:         cacheClient,
		grpcServer:    grpcServer,
		metricsServer: metricsServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	if a.metricsServer != nil {
		go func() {
			a.logger.Info("metrics server starting", zap.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	var errs []error

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return errors.Join(errs...)
}
