package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vi31/anxiety-predictor/internal/application/usecase"
	"github.com/vi31/anxiety-predictor/internal/domain/port"
	"github.com/vi31/anxiety-predictor/internal/domain/service"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/config"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/kafka"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/memory"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/messaging"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/ml"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/postgres"
	grpcpresentation "github.com/vi31/anxiety-predictor/internal/presentation/grpc"
	"github.com/vi31/anxiety-predictor/internal/presentation/rest"
	"github.com/vi31/anxiety-predictor/pkg/auth"
	"github.com/vi31/anxiety-predictor/pkg/observability"
)

const serviceName = "anxiety-predictor"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     serviceName,
		Environment: cfg.Environment,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("anxiety-predictor failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting anxiety-predictor",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.ModelPath,
		"baseline", cfg.AttributionBaseline,
	)

	// Initialize tracing.
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Environment: cfg.Environment,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}
	defer meterProvider.Shutdown(context.Background())

	metrics, err := observability.NewMetrics(meterProvider, observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}

	// The trained pipeline is loaded once; without it there is nothing to serve.
	pipeline, err := ml.LoadFile(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	logger.Info("model loaded",
		"version", pipeline.Version(),
		"features_out", len(pipeline.Preprocessor().FeatureNamesOut()),
		"background_rows", len(pipeline.Background()),
	)

	baseline, err := service.ParseBaseline(cfg.AttributionBaseline)
	if err != nil {
		return err
	}
	if baseline == service.BaselineTraining && len(pipeline.Background()) == 0 {
		return fmt.Errorf("ATTRIBUTION_BASELINE=training but the model at %s carries no background sample", cfg.ModelPath)
	}

	// Wire infrastructure adapters.
	checks := map[string]rest.ReadinessCheck{}

	repo, closeRepo, err := newRepository(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer closeRepo()

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		return err
	}

	// Wire domain services.
	mapper := service.NewFeatureMapper()
	inference := service.NewInferenceEngine(pipeline)
	attribution := service.NewAttributionEngine(ml.NewTreeExplainer, baseline)

	// Wire use cases.
	predictUC := usecase.NewPredictAnxiety(mapper, inference, repo, publisher, pipeline.Version(), logger)
	explainUC := usecase.NewExplainAnxiety(mapper, attribution, pipeline, repo, publisher, logger)
	getUC := usecase.NewGetPrediction(repo)
	listUC := usecase.NewListPredictions(repo)

	// gRPC server.
	grpcHandler := grpcpresentation.NewAnxietyServiceHandler(predictUC, explainUC, getUC, metrics, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
		Auth:        verifier,
	}, metrics, logger)
	if err != nil {
		return err
	}

	// HTTP server.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			API:            rest.NewAnxietyHandler(predictUC, explainUC, getUC, listUC, metrics, logger),
			Health:         rest.NewHealthHandler(pipeline.Version(), checks, logger),
			MetricsHandler: metricsHandler,
			Metrics:        metrics,
			Logger:         logger,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Auth:           verifier,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("anxiety-predictor started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down anxiety-predictor")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("anxiety-predictor stopped")
	return serveErr
}

// newRepository returns the PostgreSQL history when DATABASE_URL is set and
// the in-process LRU otherwise.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]rest.ReadinessCheck) (port.PredictionRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		repo, err := memory.NewPredictionRepository(cfg.HistorySize)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using in-memory prediction history", "size", cfg.HistorySize)
		return repo, func() {}, nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := postgres.NewPool(dbCtx, postgres.PoolConfig{DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")

	checks["database"] = func(ctx context.Context) error { return postgres.HealthCheck(ctx, pool) }
	return postgres.NewPredictionRepository(pool), pool.Close, nil
}

// newPublisher returns the Kafka publisher when brokers are configured and
// the logging publisher otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no Kafka brokers configured, logging events instead")
		return messaging.NewLogPublisher(logger), func() {}, nil
	}

	pub, err := kafka.NewPublisher(kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		Topic:         cfg.KafkaTopic,
		TLS:           cfg.KafkaTLS,
		SASLMechanism: cfg.KafkaSASLMechanism,
		SASLUsername:  cfg.KafkaSASLUsername,
		SASLPassword:  cfg.KafkaSASLPassword,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)

	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("failed to close kafka publisher", "error", err)
		}
	}, nil
}

// newVerifier returns nil when no token key is configured, leaving the API open.
func newVerifier(cfg *config.Config, logger *slog.Logger) (*auth.Verifier, error) {
	if !cfg.AuthEnabled() {
		logger.Warn("bearer token auth disabled")
		return nil, nil
	}

	authCfg := auth.Config{
		Secret:   cfg.AuthJWTSecret,
		Issuer:   cfg.AuthJWTIssuer,
		Audience: cfg.AuthJWTAudience,
		Leeway:   30 * time.Second,
	}
	if cfg.AuthJWTPublicKey != "" {
		pem, err := auth.LoadKeyFile(cfg.AuthJWTPublicKey)
		if err != nil {
			return nil, err
		}
		authCfg.PublicKeyPEM = pem
	}

	v, err := auth.NewVerifier(authCfg)
	if err != nil {
		return nil, err
	}
	logger.Info("bearer token auth enabled", "algorithm", v.Algorithm(), "issuer", cfg.AuthJWTIssuer)
	return v, nil
}
