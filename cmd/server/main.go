package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingproxy/internal/api"
	"bookingproxy/internal/booking"
	"bookingproxy/internal/config"
	"bookingproxy/internal/domain"
	"bookingproxy/internal/events"
	"bookingproxy/internal/journal"
	"bookingproxy/internal/logging"
	"bookingproxy/internal/metrics"
	"bookingproxy/internal/notify"
	"bookingproxy/internal/paypal"
	"bookingproxy/internal/smoobu"
	"bookingproxy/internal/stripe"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	smoobuClient := smoobu.NewClient(cfg.Smoobu.BaseURL, cfg.Smoobu.APIToken)

	var card domain.CardProcessor
	if cfg.StripeEnabled() {
		card = stripe.NewClient(cfg.Stripe.SecretKey)
	}

	var wallet domain.WalletProcessor
	if cfg.PayPalEnabled() {
		wallet = paypal.NewClient(cfg.PayPal.ClientID, cfg.PayPal.Secret, cfg.PayPal.Environment)
	}

	bus := events.NewEventBus()
	initNotifier(cfg, bus, logger)

	bookings := booking.NewService(booking.Deps{
		Pricing:      smoobuClient,
		Reservations: smoobuClient,
		Card:         card,
		Wallet:       wallet,
		Events:       bus,
		Journal:      initJournal(ctx, cfg, logger),
		Logger:       logger,
		Currency:     cfg.Currency,
		AppURL:       cfg.AppURL,
	})

	startMetrics(ctx, cfg, logger)

	server := api.NewServer(cfg, smoobuClient, bookings, logger)
	return serve(ctx, server, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, &logger, closer, nil
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.TelegramEnabled() {
		return
	}

	notifier, err := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier.SubscribeTo(bus)
	logger.Info().Msg("telegram notifier connected")
}

func initJournal(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.Journal {
	if !cfg.JournalEnabled() {
		return nil
	}

	appender, err := journal.NewSheetsAppender(ctx, cfg.Google.CredentialsFile, cfg.Google.JournalSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("sheets journal init failed, continuing without journal")
		return nil
	}

	worker := journal.NewWorker(appender, journal.RetryPolicy{}, logger)
	go worker.Run(ctx)

	logger.Info().Msg("sheets journal connected")
	return worker
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, server *api.Server, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
