package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/egannguyen/petsupplies/internal/cartstore"
	"github.com/egannguyen/petsupplies/internal/config"
	delivery "github.com/egannguyen/petsupplies/internal/delivery/http"
	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/messaging"
	"github.com/egannguyen/petsupplies/internal/messaging/channel"
	"github.com/egannguyen/petsupplies/internal/messaging/kafka"
	"github.com/egannguyen/petsupplies/internal/metrics"
	"github.com/egannguyen/petsupplies/internal/repository"
	"github.com/egannguyen/petsupplies/internal/repository/memory"
	"github.com/egannguyen/petsupplies/internal/repository/postgres"
	"github.com/egannguyen/petsupplies/internal/service"
)

const shutdownTimeout = 10 * time.Second

func (r *root) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, r.cfg)
		},
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	mustBindFlag(r.v, "http.addr", cmd.Flags(), "addr")
	return cmd
}

// app holds every long-lived component of a running server.
type app struct {
	repos    *repository.Repositories
	carts    cartstore.Store
	broker   messaging.Broker
	metrics  *metrics.Metrics
	handler  *delivery.Handler
	notifier *service.NotificationService
}

func (a *app) Close() error {
	var errs []error
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
	}
	if a.carts != nil {
		errs = append(errs, a.carts.Close())
	}
	if a.repos != nil {
		errs = append(errs, a.repos.Close())
	}
	return errors.Join(errs...)
}

func openRepositories(ctx context.Context, cfg config.Config) (*repository.Repositories, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.InitDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepositories(db), nil
	default:
		return memory.NewRepositories(), nil
	}
}

func openBroker(cfg config.Config) messaging.Broker {
	if cfg.Broker.Driver == "kafka" {
		return kafka.NewKafkaBroker(cfg.Kafka.Brokers)
	}
	return channel.NewChannelBroker(slog.Default())
}

func jwtSecret(cfg config.Config) ([]byte, error) {
	if cfg.Auth.JWTSecret != "" {
		return []byte(cfg.Auth.JWTSecret), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	slog.Warn("auth.jwt_secret not set, using a random secret; seller tokens will not survive a restart")
	return secret, nil
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{metrics: metrics.New()}

	// --- Storage ---
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.repos = repos

	if cfg.Seed.Enabled {
		if err := seed(ctx, repos, cfg.Seed.Password); err != nil {
			a.Close()
			return nil, err
		}
	}

	carts, err := cartstore.NewStore(ctx, cartstore.Options{
		Kind:          cfg.Cart.Store,
		Dir:           cfg.Cart.Dir,
		SQLitePath:    cfg.Cart.SQLitePath,
		TTL:           cfg.Cart.TTL,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open cart store: %w", err)
	}
	a.carts = carts

	// --- Messaging ---
	a.broker = openBroker(cfg)
	a.notifier = service.NewNotificationService(a.broker)

	// --- Services ---
	secret, err := jwtSecret(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	cartSvc := service.NewCartService(carts, repos.Products)
	a.handler = delivery.NewHandler(delivery.Services{
		Catalog: service.NewCatalogService(repos.Products, repos.Sellers),
		Carts:   cartSvc,
		Orders:  service.NewOrderService(repos.Orders, repos.Products, repos.Events, cartSvc, a.broker, a.metrics),
		Reviews: service.NewReviewService(repos.Reviews, repos.Products, a.metrics),
		Auth:    service.NewAuthService(repos.Sellers, secret, cfg.Auth.TokenTTL),
		Metrics: a.metrics,
	})
	return a, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	return runServer(ctx, cfg, a)
}

// runServer serves HTTP until ctx is done, then stops the consumers before closing a.
func runServer(ctx context.Context, cfg config.Config, a *app) error {
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limiter *delivery.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = delivery.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Cleanup(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           delivery.NewRouter(a.handler, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	consumersDone := make(chan struct{})
	go func() {
		defer close(consumersDone)
		a.notifier.Run(ctx)
	}()
	// runs before a.Close so no handler is still using the broker or stores
	defer func() {
		cancel()
		<-consumersDone
		slog.Info("Event consumers stopped")
	}()
	slog.Info("Event consumers started", "broker", cfg.Broker.Driver)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTP.Addr, "store", cfg.Store.Driver, "cart_store", cfg.Cart.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// seed loads the starter catalog and seller accounts. Existing data is left alone.
func seed(ctx context.Context, repos *repository.Repositories, password string) error {
	if err := repos.Products.Seed(ctx, repository.SeedProducts(), repository.SeedReviews()); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	sellers, err := repository.SeedSellers(password)
	if err != nil {
		return err
	}
	created := 0
	for _, s := range sellers {
		err := repos.Sellers.Create(ctx, s)
		switch {
		case err == nil:
			created++
		case entity.IsValidation(err):
			// already registered
		default:
			return fmt.Errorf("failed to seed seller %s: %w", s.ID, err)
		}
	}
	slog.Info("Seed data loaded", "sellers_created", created)
	return nil
}
