package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	bookingStore "github.com/MrJamesThe3rd/campbooking/internal/booking/store"
	"github.com/MrJamesThe3rd/campbooking/internal/config"
	"github.com/MrJamesThe3rd/campbooking/internal/database"
	campHttp "github.com/MrJamesThe3rd/campbooking/internal/http"
	accountHandler "github.com/MrJamesThe3rd/campbooking/internal/http/account"
	bookingHandler "github.com/MrJamesThe3rd/campbooking/internal/http/booking"
	paymentHandler "github.com/MrJamesThe3rd/campbooking/internal/http/payment"
	"github.com/MrJamesThe3rd/campbooking/internal/importer"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/campbooking/internal/ledger/store"
	"github.com/MrJamesThe3rd/campbooking/internal/lock"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
	pricingStore "github.com/MrJamesThe3rd/campbooking/internal/pricing/store"
	"github.com/MrJamesThe3rd/campbooking/internal/token"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	locker, closeLocker, err := newLocker(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to set up booking lock", "backend", cfg.Lock.Backend, "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	priceService := pricing.NewService(pricingStore.New(db))

	ledgerService := ledger.NewService(ledgerStore.New(db), priceService, ledger.Policy{
		FullPaymentDue:       cfg.Booking.FullPaymentDue,
		PendingAbandonMonths: cfg.Booking.PendingAbandonMonths,
		LateBookingThreshold: cfg.Booking.LateBookingThreshold,
	})

	bookingService := booking.NewService(bookingStore.New(db), priceService, locker, ledgerService, booking.Policy{
		LockName:             "booking",
		ExpiryWindow:         cfg.Booking.ExpiryWindow,
		WarningLead:          cfg.Booking.WarningLead,
		LateBookingThreshold: cfg.Booking.LateBookingThreshold,
		EarlyBirdCutoff:      cfg.EarlyBirdCutoff,
	})

	signer := token.NewSigner(cfg.Token.Secret, cfg.Token.TTL)

	var (
		accountH = accountHandler.NewHandler(ledgerService, signer, publisher)
		bookingH = bookingHandler.NewHandler(bookingService, publisher)
		paymentH = paymentHandler.NewHandler(ledgerService, importer.NewParser(), publisher)
	)

	router := campHttp.New(cfg.App.AllowedOrigins, accountH, bookingH, paymentH)

	sweeper := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := sweeper.AddFunc(cfg.Sweeper.Schedule, func() {
		sweepExpired(ctx, bookingService, publisher)
	}); err != nil {
		slog.Error("invalid sweeper schedule", "schedule", cfg.Sweeper.Schedule, "error", err)
		os.Exit(1)
	}

	sweeper.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		<-sweeper.Stop().Done()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "lock", cfg.Lock.Backend, "sweeper", cfg.Sweeper.Schedule)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newLocker(ctx context.Context, cfg *config.Config, db *sql.DB) (lock.Locker, func() error, error) {
	opts := lock.Options{Timeout: cfg.Lock.Timeout, Retry: cfg.Lock.Retry}
	noop := func() error { return nil }

	switch cfg.Lock.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("pinging redis: %w", err)
		}

		return lock.NewRedis(client, cfg.Lock.TTL, opts), client.Close, nil
	case "local":
		slog.Warn("using in-process booking lock; do not run more than one instance")
		return lock.NewLocal(opts), noop, nil
	default:
		return lock.NewPostgres(db, opts), noop, nil
	}
}

func newPublisher(cfg *config.Config) (notify.Publisher, func() error) {
	if cfg.AMQP.URL == "" {
		return notify.NewLog(slog.Default()), func() error { return nil }
	}

	a := notify.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Queue)

	return a, a.Close
}

func sweepExpired(ctx context.Context, svc *booking.Service, publisher notify.Publisher) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	res, err := svc.SweepExpired(ctx, time.Now())
	if err != nil {
		slog.Error("expiry sweep incomplete", "error", err)
	}

	if res == nil || len(res.Notifications) == 0 {
		return
	}

	if err := publisher.Publish(ctx, res.Notifications); err != nil {
		slog.Error("failed to publish sweep notifications", "count", len(res.Notifications), "error", err)
	}
}
