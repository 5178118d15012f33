package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/wdvjq5v655-netizen/gym/internal/adapters/cache"
	eventadapter "github.com/wdvjq5v655-netizen/gym/internal/adapters/events"
	httpadapter "github.com/wdvjq5v655-netizen/gym/internal/adapters/http"
	"github.com/wdvjq5v655-netizen/gym/internal/adapters/payments"
	"github.com/wdvjq5v655-netizen/gym/internal/adapters/postgres"
	"github.com/wdvjq5v655-netizen/gym/internal/adapters/security"
	"github.com/wdvjq5v655-netizen/gym/internal/adapters/shipping"
	"github.com/wdvjq5v655-netizen/gym/internal/application"
	"github.com/wdvjq5v655-netizen/gym/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping storefront service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)

	gateway := payments.NewStripeGateway(cfg.StripeBaseURL, cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeTimeout)
	carrier := shipping.NewShippoCarrier(cfg.ShippoBaseURL, cfg.ShippoAPIToken, cfg.ShipFrom, cfg.ShippoTimeout)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			SessionTTL:       cfg.SessionTTL,
			AdminSessionTTL:  cfg.AdminSessionTTL,
			AdminPassword:    cfg.AdminPassword,
			WaitlistLimit:    cfg.WaitlistLimit,
			VisitorWindow:    cfg.VisitorWindow,
			FreeShippingMin:  cfg.FreeShippingMin,
			FlatShippingRate: cfg.FlatShippingRate,
			SuccessURL:       cfg.CheckoutSuccessURL,
			CancelURL:        cfg.CheckoutCancelURL,
		},
		Stock:       repos.Stock,
		Orders:      repos.Orders,
		Pending:     repos.Pending,
		Payments:    repos.Payments,
		Waitlist:    repos.Waitlist,
		Promos:      repos.Promos,
		Users:       repos.Users,
		Subscribers: repos.Subscribers,
		Carts:       repos.Carts,
		Outbox:      repos.Outbox,
		Sessions:    cacheadapter.NewRedisSessionStore(redisClient),
		AdminTokens: cacheadapter.NewRedisAdminSessionStore(redisClient),
		Visitors:    cacheadapter.NewRedisVisitorStore(redisClient),
		Gateway:     gateway,
		Carrier:     carrier,
		Hasher:      security.NewBcryptHasher(cfg.BcryptCost),
	})

	handler := httpadapter.NewHandler(svc, gateway)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	var publisher ports.EventPublisher
	if cfg.EventWebhookURL != "" || len(cfg.EventWebhookRoutes) > 0 {
		publisher = eventadapter.NewWebhookPublisher(logger, cfg.EventWebhookRoutes, cfg.EventWebhookURL, cfg.EventHTTPTimeout)
	} else {
		publisher = eventadapter.NewLoggingPublisher(logger)
	}
	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker drives the outbox publisher plus the periodic sweeps for
// abandoned carts and stale checkout sessions.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.runSweeps(ctx)

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) runSweeps(ctx context.Context) {
	cartTicker := time.NewTicker(r.cfg.CartSweepInterval)
	defer cartTicker.Stop()
	checkoutTicker := time.NewTicker(r.cfg.CheckoutSweepInterval)
	defer checkoutTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cartTicker.C:
			sent, err := r.service.SweepAbandonedCarts(ctx)
			if err != nil {
				r.logger.Error("cart sweep failed", "error", err)
			} else if sent > 0 {
				r.logger.Info("cart reminders queued", "count", sent)
			}
		case <-checkoutTicker.C:
			handled, err := r.service.SweepStaleCheckouts(ctx, r.cfg.CheckoutStaleAfter, r.cfg.CheckoutSweepBatch)
			if err != nil {
				r.logger.Error("stale checkout sweep failed", "error", err)
			} else if handled > 0 {
				r.logger.Info("stale checkouts resolved", "count", handled)
			}
		}
	}
}
