package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/DanielPopoola/payment-gateway/internal/application/services"
	"github.com/DanielPopoola/payment-gateway/internal/application/validation"
	"github.com/DanielPopoola/payment-gateway/internal/config"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/bank"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/crypto"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/events"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/metrics"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/payment-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/payment-gateway/internal/worker"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the idempotency sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

type stores struct {
	payments    application.PaymentRepository
	idempotency idempotency.Store
	checks      []handlers.Option
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, enc *crypto.AESEncryptor, logger *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		store := postgres.NewIdempotencyRepository(db,
			postgres.WithResponseTTL(cfg.Idempotency.ResponseTTL),
			postgres.WithLockTimeout(cfg.Idempotency.LockTimeout),
		)
		return &stores{
			payments:    postgres.NewPaymentRepository(db, enc),
			idempotency: store,
			checks:      []handlers.Option{handlers.WithHealthCheck("database", db.Ping)},
			close:       db.Close,
		}, nil
	default:
		store := idempotency.NewMemoryStore(
			idempotency.WithResponseTTL(cfg.Idempotency.ResponseTTL),
			idempotency.WithLockTimeout(cfg.Idempotency.LockTimeout),
			idempotency.WithMaxEntries(cfg.Idempotency.MaxEntries),
		)
		return &stores{
			payments:    memory.NewPaymentRepository(enc),
			idempotency: store,
			close:       func() {},
		}, nil
	}
}

func runServe(ctx context.Context, configFile string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, shutdownMetrics, err := metrics.NewMeterProvider(cfg.Metrics.Exporter, cfg.Metrics.Interval)
	if err != nil {
		return fmt.Errorf("create meter provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			logger.Error("failed to flush metrics", "error", err)
		}
	}()

	paymentMetrics, err := metrics.NewPaymentMetrics(provider)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	encryptor, err := crypto.NewAESEncryptor(cfg.Encryption.Key)
	if err != nil {
		return fmt.Errorf("create encryptor: %w", err)
	}

	st, err := openStores(ctx, cfg, encryptor, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.close()

	var publisher application.EventPublisher = application.NopEventPublisher{}
	if cfg.Events.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Events, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	paymentService := services.NewPaymentService(
		validation.NewPaymentValidator(),
		bank.NewBankClient(cfg.BankClient, logger),
		st.payments,
		paymentMetrics,
		publisher,
		logger,
	)
	coordinator := idempotency.NewCoordinator(st.idempotency, paymentMetrics, logger)
	merchants := memory.NewMerchantRepository(cfg.Auth.Merchants)

	opts := append([]handlers.Option{handlers.WithMaxKeyLength(cfg.Idempotency.MaxKeyLength)}, st.checks...)
	h := handlers.NewHandlers(paymentService, coordinator, logger, opts...)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handlers.NewRouter(h, merchants, cfg.Server.RequestTimeout, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweeper := worker.NewIdempotencySweeper(st.idempotency, cfg.Idempotency.SweepInterval, logger)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go sweeper.Start(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
	return nil
}
