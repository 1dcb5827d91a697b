package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airticket/api"
	"github.com/Domenick1991/airticket/config"
	"github.com/Domenick1991/airticket/internal/bootstrap"
	"github.com/Domenick1991/airticket/internal/cache"
	"github.com/Domenick1991/airticket/internal/clock"
	"github.com/Domenick1991/airticket/internal/gateway"
	"github.com/Domenick1991/airticket/internal/kafka"
	"github.com/Domenick1991/airticket/internal/log"
	"github.com/Domenick1991/airticket/internal/metrics"
	"github.com/Domenick1991/airticket/internal/notification"
	"github.com/Domenick1991/airticket/internal/repository"
	"github.com/Domenick1991/airticket/internal/resilience"
	"github.com/Domenick1991/airticket/internal/service/booking"
	"github.com/Domenick1991/airticket/internal/service/cancellation"
	"github.com/Domenick1991/airticket/internal/service/lookup"
	"github.com/Domenick1991/airticket/migrations"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	cfgPath := pflag.String("config", "", "path to the YAML config (default $CONFIG_PATH or config.yaml)")
	pflag.Parse()
	if *cfgPath == "" {
		*cfgPath = os.Getenv("CONFIG_PATH")
	}
	if *cfgPath == "" {
		*cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log.Init(log.ParseLevel(cfg.Log.Level))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logrus.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	newBreaker := func(name string) *resilience.Breaker {
		return resilience.NewBreaker(resilience.Settings{
			Name:             name,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Window:           time.Duration(cfg.Breaker.WindowSeconds) * time.Second,
			OpenTimeout:      time.Duration(cfg.Breaker.OpenTimeoutSeconds) * time.Second,
			OnStateChange: func(name string, from, to resilience.State) {
				metrics.RecordBreakerState(name, from, to)
				logrus.WithFields(logrus.Fields{"dependency": name, "from": from.String(), "to": to.String()}).
					Warn("circuit breaker state changed")
			},
		}, clk)
	}

	httpClient := &http.Client{}
	inventory := gateway.NewGuardedInventory(
		gateway.NewInventoryClient(cfg.Inventory.BaseURL, httpClient),
		newBreaker("inventory"),
		cfg.Inventory.Timeout(),
	)
	directory := gateway.NewGuardedDirectory(
		gateway.NewDirectoryClient(cfg.Directory.BaseURL, httpClient),
		newBreaker("directory"),
		cfg.Directory.Timeout(),
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	dispatcher := notification.NewDispatcher(directory, producer, cfg.Kafka.NotificationsTopic,
		notification.WithTimeout(time.Duration(cfg.Booking.NotifyTimeoutSeconds)*time.Second))
	defer dispatcher.Wait()

	tickets := repository.NewTicketRepository(pool)

	bookingOpts := []booking.BookingServiceOption{
		booking.WithCommitTimeout(time.Duration(cfg.Booking.CommitTimeoutSeconds) * time.Second),
	}
	if cfg.Redis.Addr != "" {
		holds := cache.NewRedisSeatHolds(cfg.Redis)
		defer holds.Close()
		bookingOpts = append(bookingOpts,
			booking.WithSeatHolds(holds, time.Duration(cfg.Booking.SeatHoldTTLSeconds)*time.Second))
	}

	bookingService := booking.NewBookingService(tickets, inventory, dispatcher, bookingOpts...)
	cancellationService := cancellation.NewCancellationService(tickets, inventory,
		cancellation.WithClock(clk),
		cancellation.WithCutoff(time.Duration(cfg.Booking.CancellationCutoffHours)*time.Hour),
		cancellation.WithNotifier(dispatcher),
	)
	lookupService := lookup.NewLookupService(tickets, inventory, directory)

	router := api.NewRouter(
		api.NewTicketHandler(bookingService, cancellationService, lookupService),
		api.NewFlightHandler(lookupService),
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		logrus.Errorf("server error: %v", err)
	}
	logrus.Info("shutting down, waiting for pending notifications")
}
