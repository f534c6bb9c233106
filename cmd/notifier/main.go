package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"cabmarket/internal/events"
	"cabmarket/internal/notifier"
	"cabmarket/pkg/kafka"
	kafka_config "cabmarket/pkg/kafka/config"
	"cabmarket/pkg/logger"
)

const (
	ServiceName   = "cabmarket-notifier"
	ConsumerGroup = "cabmarket-notifier"
)

func main() {
	log := logger.New(logger.Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}

	handler := notifier.NewHandler(notifier.NewLogNotifier(log), log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		events.TopicBookingEvents,
		ConsumerGroup,
		events.TopicBookingDLQ,
		handler.Handle,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Notifier worker started",
		"topic", events.TopicBookingEvents,
		"group", ConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}

	log.Info("Notifier worker stopped")
}
