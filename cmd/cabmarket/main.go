package main

import (
	"os"

	"cabmarket/internal/bookings/fare"
	bookinghandler "cabmarket/internal/bookings/handler"
	bookingrepo "cabmarket/internal/bookings/repository"
	bookingservice "cabmarket/internal/bookings/service"
	bookingvalidator "cabmarket/internal/bookings/validator"
	carhandler "cabmarket/internal/cars/handler"
	carrepo "cabmarket/internal/cars/repository"
	carservice "cabmarket/internal/cars/service"
	carvalidator "cabmarket/internal/cars/validator"
	driverhandler "cabmarket/internal/drivers/handler"
	driverrepo "cabmarket/internal/drivers/repository"
	driverservice "cabmarket/internal/drivers/service"
	"cabmarket/internal/events"
	reviewhandler "cabmarket/internal/reviews/handler"
	reviewrepo "cabmarket/internal/reviews/repository"
	reviewservice "cabmarket/internal/reviews/service"
	wallethandler "cabmarket/internal/wallet/handler"
	walletrepo "cabmarket/internal/wallet/repository"
	walletservice "cabmarket/internal/wallet/service"
	"cabmarket/pkg/app"
	"cabmarket/pkg/config"
	"cabmarket/pkg/kafka"
	kafka_config "cabmarket/pkg/kafka/config"
	"cabmarket/pkg/middleware"
)

const ServiceName = "cabmarket"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting cab marketplace API")

	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)

	carRepo := carrepo.NewMongoCarRepository(cfg)
	carService := carservice.NewCarService(carRepo, carvalidator.NewCarValidator(cfg.Log), cfg)

	walletRepo := walletrepo.NewMongoWalletRepository(cfg)
	walletService := walletservice.NewWalletService(walletRepo, cfg)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		carService,
		walletService,
		publisher,
		fare.NewCalculator(cfg),
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	driverRepo := driverrepo.NewMongoDriverRepository(cfg)
	driverService := driverservice.NewDriverService(driverRepo, cfg)

	reviewRepo := reviewrepo.NewMongoReviewRepository(cfg)
	reviewService := reviewservice.NewReviewService(reviewRepo, carService, cfg)

	serverApp.SetApp(
		bookinghandler.NewBookingHandler(bookingService, auth, cfg.Log),
		carhandler.NewCarHandler(carService, auth, cfg.Log),
		driverhandler.NewDriverHandler(driverService, auth, cfg.Log),
		reviewhandler.NewReviewHandler(reviewService, auth, cfg.Log),
		wallethandler.NewWalletHandler(walletService, auth, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher wires the Kafka producer when brokers are configured.
// Without KAFKA_BROKERS the API runs standalone and events are dropped.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Warn("KAFKA_BROKERS not set, booking events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.TopicBookingEvents, events.TopicBookingDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka producer initialized", "topic", events.TopicBookingEvents)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
