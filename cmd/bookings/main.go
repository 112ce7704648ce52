package main

import (
	"context"

	"barbershop/internal/bookings/handler"
	"barbershop/internal/bookings/repository"
	"barbershop/internal/bookings/service"
	"barbershop/internal/bookings/validator"
	"barbershop/internal/notifications"
	"barbershop/pkg/app"
	"barbershop/pkg/config"
	"barbershop/pkg/kafka"
	kafka_middleware "barbershop/pkg/kafka/middleware"
	"barbershop/pkg/mail"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	worker := initNotifications(cfg, serverApp)
	bookingService := initServices(cfg, worker)

	serverApp.SetApp(
		handler.NewHealthHandler(worker, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, notifier service.Notifier) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMemoryBookingRepository()
	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "store", "memory", "timezone", cfg.Location.String())
	return bookingService
}

func initNotifications(cfg *config.Config, serverApp *app.Application) *notifications.Worker {
	var (
		dispatchers []notifications.Dispatcher
		producer    *kafka.Producer
	)

	if cfg.EmailEnabled() {
		sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.ShopName)
		dispatchers = append(dispatchers,
			notifications.NewCustomerEmail(sender, cfg.ShopName),
			notifications.NewShopEmail(sender, cfg.ShopName, cfg.ShopEmail),
		)
	} else {
		cfg.Log.Warn("EMAIL_USER/EMAIL_PASS not set, confirmation emails are disabled")
	}

	if cfg.KafkaEnabled() {
		var err error
		producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaBookingsTopic,
		})
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log, producer.Topic()))
		dispatchers = append(dispatchers, notifications.NewEventDispatcher(producer, ServiceName))
	}

	if len(dispatchers) == 0 {
		dispatchers = append(dispatchers, notifications.NewLogDispatcher(cfg.Log))
	}

	worker := notifications.NewWorker(notifications.WorkerConfig{
		Workers:       cfg.NotifyWorkers,
		QueueSize:     cfg.NotifyQueueSize,
		MaxRetries:    cfg.NotifyMaxRetries,
		RatePerSecond: cfg.NotifyRatePerSecond,
	}, cfg.Log, dispatchers...)
	worker.Start()

	serverApp.OnShutdown("notifications", worker.Stop)
	if producer != nil {
		serverApp.OnShutdown("kafka producer", func(context.Context) error {
			return producer.Close()
		})
	}
	return worker
}
