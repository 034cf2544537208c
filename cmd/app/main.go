package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/eventbooking/api"
	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/backend"
	"github.com/Domenick1991/eventbooking/internal/bootstrap"
	"github.com/Domenick1991/eventbooking/internal/cache"
	"github.com/Domenick1991/eventbooking/internal/kafka"
	"github.com/Domenick1991/eventbooking/internal/logger"
	"github.com/Domenick1991/eventbooking/internal/middleware"
	"github.com/Domenick1991/eventbooking/internal/repository"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/payment"
	"github.com/Domenick1991/eventbooking/internal/service/registrations"
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

	if cfg.Payment.KeySecret == "" {
		zlog.Warn("payment.key_secret is empty, checkout signatures are not verified")
	}

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
		zlog.Warn("redis unavailable, serving without cache", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog.Named("kafka"))
	defer producer.Close()
	checkKafka(ctx, producer, zlog)

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	registrationsService := registrations.NewRegistrationsService(client, redisCache, zlog.Named("registrations"))
	paymentService := payment.NewPaymentService(
		client,
		registrationsService,
		paymentRepo,
		redisCache,
		producer,
		payment.Merchant{
			KeyID:       cfg.Payment.KeyID,
			KeySecret:   cfg.Payment.KeySecret,
			Name:        cfg.Payment.Merchant,
			Description: cfg.Payment.Description,
			ImageURL:    cfg.Payment.ImageURL,
			ThemeColor:  cfg.Payment.ThemeColor,
		},
		cfg.Kafka.BookingEventsTopic,
		payment.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		payment.WithLogger(zlog.Named("payment")),
	)
	bookingService := booking.NewBookingService(
		client,
		paymentService,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Booking.SubmissionLockTTL,
		booking.WithFlow(booking.Flow(cfg.Booking.Flow)),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(zlog.Named("booking")),
	)

	countdownHandler := api.NewCountdownHandler(cfg.Event.StartsAt)
	router := api.InitRouter(cfg.HTTP.GinMode, api.Handlers{
		Pages: api.NewPageHandler(api.Event{
			Name:         cfg.Event.Name,
			StartsAt:     cfg.Event.StartsAt,
			Dates:        cfg.Event.Dates,
			CheckIn:      cfg.Event.CheckIn,
			Venue:        cfg.Event.Venue,
			SupportEmail: cfg.Event.SupportEmail,
		}, registrationsService, countdownHandler, zlog.Named("pages")),
		Bookings:      api.NewBookingHandler(bookingService, zlog.Named("api")),
		Payments:      api.NewPaymentHandler(paymentService, zlog.Named("api")),
		Registrations: api.NewRegistrationsHandler(registrationsService, zlog.Named("api")),
		Countdown:     countdownHandler,
	},
		middleware.RequestID(),
		middleware.Logger(zlog.Named("http")),
		middleware.Recovery(zlog),
	)

	if err := bootstrap.Run(ctx, cfg, router, zlog); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

func checkKafka(ctx context.Context, producer *kafka.Producer, zlog *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := producer.CheckConnection(ctx); err != nil {
		zlog.Warn("kafka unavailable, events will be dropped", zap.Error(err))
	}
}
