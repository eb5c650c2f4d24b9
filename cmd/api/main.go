package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/veloraworld/velora-backend/api/routes"
	authsvc "github.com/veloraworld/velora-backend/internal/auth"
	cartsvc "github.com/veloraworld/velora-backend/internal/cart"
	checkoutsvc "github.com/veloraworld/velora-backend/internal/checkout"
	contentsvc "github.com/veloraworld/velora-backend/internal/content"
	couponsvc "github.com/veloraworld/velora-backend/internal/coupons"
	"github.com/veloraworld/velora-backend/internal/notifications"
	ordersvc "github.com/veloraworld/velora-backend/internal/orders"
	productsvc "github.com/veloraworld/velora-backend/internal/products"
	"github.com/veloraworld/velora-backend/pkg/config"
	"github.com/veloraworld/velora-backend/pkg/db"
	"github.com/veloraworld/velora-backend/pkg/email"
	"github.com/veloraworld/velora-backend/pkg/logger"
	"github.com/veloraworld/velora-backend/pkg/metrics"
	"github.com/veloraworld/velora-backend/pkg/migrate"
	"github.com/veloraworld/velora-backend/pkg/redis"
	"github.com/veloraworld/velora-backend/pkg/square"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	// Payment verification is skipped when no Square token is configured;
	// settlement then trusts the client-supplied reference (dev only).
	var verifier checkoutsvc.PaymentVerifier
	if cfg.Square.AccessToken != "" {
		squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap square client", err)
			os.Exit(1)
		}
		verifier = squareClient
	} else {
		logg.Warn(context.Background(), "square access token not set, payment verification disabled")
	}

	var emailClient *email.Client
	if cfg.Email.ServiceID != "" {
		emailClient, err = email.NewClient(cfg.Email, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap email client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "email relay not configured, confirmations will be logged only")
	}

	var dispatcher *notifications.Dispatcher
	if emailClient != nil {
		dispatcher, err = notifications.NewDispatcher(emailClient, logg)
	} else {
		dispatcher, err = notifications.NewDispatcher(nil, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications dispatcher", err)
		os.Exit(1)
	}

	productsRepo := productsvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())

	productService, err := productsvc.NewService(productsRepo)
	exitOnError(logg, "failed to create products service", err)

	cartService, err := cartsvc.NewService(redisClient, productService, logg, cfg.Cart)
	exitOnError(logg, "failed to create cart service", err)

	couponService, err := couponsvc.NewService(couponsvc.NewRepository(dbClient.DB()))
	exitOnError(logg, "failed to create coupons service", err)

	orderService, err := ordersvc.NewService(ordersRepo)
	exitOnError(logg, "failed to create orders service", err)

	contentService, err := contentsvc.NewService(contentsvc.NewRepository(dbClient.DB()))
	exitOnError(logg, "failed to create content service", err)

	authService, err := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, cfg.App)
	exitOnError(logg, "failed to create auth service", err)

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		couponService,
		productsRepo,
		ordersRepo,
		dbClient,
		verifier,
		dispatcher,
		checkoutMetrics,
		logg,
		cfg.Checkout,
	)
	exitOnError(logg, "failed to create checkout service", err)

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
		Auth:     authService,
		Products: productService,
		Cart:     cartService,
		Checkout: checkoutService,
		Coupons:  couponService,
		Orders:   orderService,
		Content:  contentService,
	}, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down server", err)
		}
	}

	closeErr := multierr.Combine(
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
