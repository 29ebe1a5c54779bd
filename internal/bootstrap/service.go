package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/RafaelEmery/payments-engine/internal/api"
	"github.com/RafaelEmery/payments-engine/internal/payment"
	"github.com/RafaelEmery/payments-engine/internal/postgres"
	"github.com/RafaelEmery/payments-engine/pkg/log"
	zaplog "github.com/RafaelEmery/payments-engine/pkg/zap"
)

// Service is the assembled payments application.
type Service struct {
	cfg       Config
	logger    log.Logger
	db        *postgres.Database
	redis     *redis.Client
	app       *fiber.App
	scheduler *Scheduler
}

// NewService wires every component from configuration: logger, database,
// repositories, domain services, HTTP handlers, and the settlement
// scheduler.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	logger, _, err := zaplog.New(zaplog.Config{
		Environment: zaplog.Environment(cfg.Environment),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := postgres.Connect(ctx, postgres.Config{
		PrimaryDSN:     cfg.DatabaseDSN,
		ReplicaDSN:     cfg.DatabaseReplicaDSN,
		MigrationsPath: cfg.MigrationsPath,
		DatabaseName:   cfg.DatabaseName,
	}, logger)
	if err != nil {
		return nil, err
	}

	customers := postgres.NewCustomerRepository(db)
	transactions := postgres.NewTransactionRepository(db)
	payables := postgres.NewPayableRepository(db)
	ledger := postgres.NewLedgerRepository(db)

	strategies := payment.NewStrategySet(transactions, payables, ledger, logger, nil)
	processor := payment.NewProcessor(customers, transactions, ledger, strategies, logger)
	onboarding := payment.NewOnboardingService(customers, ledger, logger)
	settlement := payment.NewSettlementService(payables, customers, ledger, logger, nil)

	scheduler, err := NewScheduler(cfg.SettlementCron, settlement, logger)
	if err != nil {
		db.Close()

		return nil, err
	}

	var redisClient *redis.Client

	var middlewares []fiber.Handler

	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		middlewares = append(middlewares, api.Idempotency(redisClient, cfg.IdempotencyTTL, logger))
	}

	handler := api.NewHandler(onboarding, processor, logger)
	app := api.NewApp(handler, middlewares...)

	return &Service{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		app:       app,
		scheduler: scheduler,
	}, nil
}

// Run starts the HTTP server and the settlement scheduler, then blocks
// until a termination signal or a fatal server error. Shutdown is graceful
// within the configured timeout.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrs := make(chan error, 1)

	go func() {
		s.logger.Log(ctx, log.LevelInfo, "http server starting",
			log.String("address", s.cfg.ServerAddress),
		)

		if err := s.app.Listen(s.cfg.ServerAddress); err != nil {
			serverErrs <- err
		}
	}()

	schedulerErrs := make(chan error, 1)

	go func() {
		schedulerErrs <- s.scheduler.Run(ctx)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		s.logger.Log(ctx, log.LevelInfo, "shutdown signal received")
	case err := <-serverErrs:
		runErr = fmt.Errorf("http server failed: %w", err)
	case err := <-schedulerErrs:
		if err != nil {
			runErr = fmt.Errorf("settlement scheduler failed: %w", err)
		}
	}

	stop()

	return errors.Join(runErr, s.shutdown())
}

// shutdown drains the HTTP server and releases storage connections.
func (s *Service) shutdown() error {
	var errs []error

	if err := s.app.ShutdownWithTimeout(s.cfg.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}

	syncCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = s.logger.Sync(syncCtx)

	return errors.Join(errs...)
}
