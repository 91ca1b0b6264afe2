package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/cart"
	"bookstore/internal/config"
	"bookstore/internal/gateway"
	"bookstore/internal/handler"
	"bookstore/internal/notify"
	"bookstore/internal/router"
	"bookstore/internal/service"
	"bookstore/internal/storage"

	"github.com/rs/zerolog"
)

// notificationBacklog is how many toasts are kept between polls.
const notificationBacklog = 50

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bookstore storefront")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the persisted cart store
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart store: %w", err)
	}
	defer store.Close()

	// Initialize coupon validation
	validator, err := newCouponValidator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon validator: %w", err)
	}
	defer validator.Close()

	backend := gateway.New(cfg.Backend, logger)

	// Toasts go to the log and to the buffer polled by the storefront
	toasts := notify.NewBuffer(notificationBacklog)
	notifier := notify.Multi(notify.NewLogNotifier(logger), toasts)

	engine := cart.New(store, backend, validator, notifier, cart.Config{
		Pricing: cart.PricingRules{
			FreeShippingThreshold: cfg.Cart.FreeShippingThreshold,
			ShippingFee:           cfg.Cart.ShippingFee,
		},
		RefreshTimeout: cfg.Cart.RefreshTimeoutDuration(),
	}, logger)

	if err := engine.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("cart restored with errors, continuing with what could be read")
	}
	// Runs before store.Close so a late price refresh never writes to a closed store
	defer waitForRefresh(engine, cfg.Cart.RefreshTimeoutDuration(), logger)

	// Initialize services
	productService := service.NewProductService(backend, logger)
	cartService := service.NewCartService(engine, backend, notifier, logger)
	orderService := service.NewOrderService(engine, backend, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:      handler.NewProductHandler(productService, logger),
		Cart:         handler.NewCartHandler(cartService, logger),
		Order:        handler.NewOrderHandler(orderService, logger),
		Notification: handler.NewNotificationHandler(toasts, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.Cart.RefreshTimeoutDuration(),
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("backend", cfg.Backend.BaseURL).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// waitForRefresh blocks until the engine's background price refresh has
// finished or timeout elapses. It reports whether the refresh finished.
func waitForRefresh(engine *cart.Engine, timeout time.Duration, logger zerolog.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := engine.WaitReady(ctx); err != nil {
		logger.Warn().Err(err).Msg("cart price refresh still running at shutdown")
		return false
	}
	return true
}
