package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/cache"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/logger"
	"github.com/Domenick1991/eventbooking/internal/notify"
	"github.com/Domenick1991/eventbooking/internal/repository"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	paymentRepo := repository.NewPaymentRepository(pool)
	if err := paymentRepo.Migrate(ctx); err != nil {
		zlog.Fatal("migrate payments", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.BookingsCacheTTL, cfg.Booking.GreetingCacheTTL)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		zlog.Warn("redis unavailable, abandoned checkouts keep their locks until expiry", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog.Named("kafka"))
	defer producer.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(pingCtx); err != nil {
		zlog.Warn("kafka unavailable, events will be dropped", zap.Error(err))
	}
	cancel()

	// The sweep only needs the store, the locks and the event stream.
	paymentService := payment.NewPaymentService(
		nil,
		nil,
		paymentRepo,
		redisCache,
		producer,
		payment.Merchant{},
		cfg.Kafka.BookingEventsTopic,
		payment.WithLogger(zlog.Named("payment")),
	)

	if cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog.Named("consumer"))
		defer consumer.Close()

		sender := notify.NewSender(zlog.Named("notify"))
		go func() {
			if err := consumer.Consume(ctx, sender.Send); err != nil {
				zlog.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	sweep := time.NewTicker(cfg.Worker.AbandonSweepInterval)
	defer sweep.Stop()

	zlog.Info("worker started",
		zap.Duration("abandon_sweep_interval", cfg.Worker.AbandonSweepInterval),
		zap.Duration("abandon_after", cfg.Worker.AbandonAfter),
	)

	for {
		select {
		case <-sweep.C:
			abandoned, err := paymentService.AbandonStale(ctx, cfg.Worker.AbandonAfter)
			if err != nil {
				zlog.Error("abandon stale payments", zap.Error(err))
				continue
			}
			if len(abandoned) > 0 {
				zlog.Info("abandoned stale payments", zap.Int("count", len(abandoned)))
			}
		case <-ctx.Done():
			zlog.Info("shutting down")
			return
		}
	}
}
