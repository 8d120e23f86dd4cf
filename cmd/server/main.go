package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/app"
	"github.com/Freeeeeet/clinic_booking/internal/config"
	"github.com/Freeeeeet/clinic_booking/internal/controller"
	"github.com/Freeeeeet/clinic_booking/internal/controller/httpapi"
	"github.com/Freeeeeet/clinic_booking/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)

	defer logger.Sync()

	logger.Sugar().Infow("Starting clinic booking service",
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"http_addr", cfg.HTTPAddr,
		"lock_timeout", cfg.LockTimeout,
		"telegram", cfg.TelegramToken != "")

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}

	logger.Info("Service stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if cfg.SeedDemo {
		seeder := service.NewSeedService(store, time.Now, logger.Named("seed"))
		if _, err := seeder.SeedDemo(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	bookingService := service.NewBookingService(store, logger.Named("booking"))
	slotService := service.NewSlotService(store, logger.Named("slots"))

	scheduler := app.NewScheduler(slotService, cfg.AuditInterval, logger.Named("scheduler"))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var limiter *httpapi.ClientLimiter
	if cfg.BookRateRPS > 0 {
		limiter = httpapi.NewClientLimiter(cfg.BookRateRPS, cfg.BookRateBurst)
	}

	httpLogger := logger.Named("http")
	handlers := httpapi.NewHandlers(bookingService, slotService, store, httpLogger)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handlers, httpapi.RouterConfig{
			RequestTimeout: cfg.RequestTimeout,
			BookLimiter:    limiter,
		}, httpLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var botController *controller.BotController
	if cfg.TelegramToken != "" {
		botInstance, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}

		botController = controller.NewBotController(botInstance, bookingService, slotService, logger.Named("bot"))
		if err := botController.RegisterHandlers(ctx); err != nil {
			return fmt.Errorf("register bot handlers: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if limiter != nil {
		g.Go(func() error {
			limiter.RunCleanup(gctx, 2*time.Minute)
			return nil
		})
	}

	if botController != nil {
		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	return g.Wait()
}
