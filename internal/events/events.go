// Package events publishes booking lifecycle events to Kafka. The
// notifier worker consumes them to send user-facing messages.
package events

import (
	"context"
	"time"

	"cabmarket/pkg/kafka"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"
)

const (
	TopicBookingEvents = "cabmarket.booking-events"
	TopicBookingDLQ    = "cabmarket.booking-events.dlq"

	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingClaimed   = "booking.claimed"
)

// BookingEvent is the payload shared by every lifecycle event.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	UserID       string    `json:"user_id"`
	CarID        string    `json:"car_id"`
	TravelDate   string    `json:"travel_date"`
	PickupTime   string    `json:"pickup_time"`
	Fare         float64   `json:"fare"`
	WalletPoints float64   `json:"wallet_points,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle events. Publishing is best-effort: the
// booking write has already committed when an event goes out, so
// failures are logged, never surfaced to the caller.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
	BookingClaimed(ctx context.Context, booking *model.Booking, walletPoints float64)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, booking, 0)
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCancelled, booking, 0)
}

func (p *kafkaPublisher) BookingClaimed(ctx context.Context, booking *model.Booking, walletPoints float64) {
	p.publish(ctx, TypeBookingClaimed, booking, walletPoints)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking, walletPoints float64) {
	event := BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		CarID:        booking.CarID,
		TravelDate:   booking.TravelDate,
		PickupTime:   booking.PickupTime,
		Fare:         booking.Fare,
		WalletPoints: walletPoints,
		OccurredAt:   time.Now().UTC(),
	}

	// Key by booking ID so events for one booking stay ordered.
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "event_type", eventType, "booking_id", booking.ID)
}

// NopPublisher discards events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *model.Booking)          {}
func (NopPublisher) BookingCancelled(context.Context, *model.Booking)        {}
func (NopPublisher) BookingClaimed(context.Context, *model.Booking, float64) {}
