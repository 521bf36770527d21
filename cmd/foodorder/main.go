package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"foodorder/internal/config"
	"foodorder/internal/database"
	"foodorder/internal/dedup"
	"foodorder/internal/events"
	"foodorder/internal/gateway"
	"foodorder/internal/handler"
	"foodorder/internal/memstore"
	"foodorder/internal/service"
	"foodorder/internal/storage"
	"foodorder/internal/worker"
)

type store interface {
	storage.OrderStore
	storage.RestaurantStore
	storage.UserStore
}

type publisher interface {
	service.EventPublisher
	io.Closer
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	st, db, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer database.CloseDB(db)
	}

	pub, err := openPublisher(cfg)
	if err != nil {
		slog.Error("failed to connect to event broker", "broker", cfg.EventsBroker, "error", err)
		os.Exit(1)
	}
	defer pub.Close()

	var deliveryLog service.DeliveryLog
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		deliveryLog = dedup.NewRedisLog(rdb, dedup.DefaultTTL)
	}

	stripeGateway := gateway.NewStripe(gateway.StripeConfig{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.Currency,
		HTTPTimeout:   cfg.GatewayTimeout,
		BackendURL:    cfg.StripeAPIURL,
	})

	// Services
	ledger := service.NewLedger(st, st, pub, cfg.StoreTimeout)
	svc := handler.Services{
		Auth:        service.NewAuthService(st),
		Checkout:    service.NewCheckoutService(st, ledger, stripeGateway, service.DefaultCheckoutURLs(cfg.FrontendURL)),
		Reconciler:  service.NewReconciler(stripeGateway, ledger, deliveryLog),
		Ledger:      ledger,
		Orders:      service.NewOrderQueries(ledger, st, st),
		Restaurants: service.NewRestaurantService(st),
	}

	// Worker
	sweeper := worker.NewSweeper(ledger, cfg.CheckoutTTL, cfg.SweepInterval)

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      handler.NewRouter(svc, handler.RouterConfig{JWTSecret: cfg.JWTSecret}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "broker", cfg.EventsBroker, "postgres", db != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}

func openStore(cfg *config.Config) (store, *sql.DB, error) {
	if cfg.DatabaseURI == "" {
		slog.Warn("DATABASE_URI not set, keeping data in memory")
		return memstore.New(), nil, nil
	}

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.InitSchema(ctx, db); err != nil {
		database.CloseDB(db)
		return nil, nil, err
	}
	return database.NewStore(db), db, nil
}

func openPublisher(cfg *config.Config) (publisher, error) {
	switch cfg.EventsBroker {
	case "kafka":
		return events.DialKafka(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.BrokerTimeout)
	case "rabbitmq":
		return events.DialRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.BrokerTimeout)
	default:
		return events.Nop{}, nil
	}
}
