// Package notifier turns booking lifecycle events into user-facing
// notifications. It runs as a separate worker consuming the booking
// events topic.
package notifier

import (
	"context"
	"fmt"

	"cabmarket/internal/events"
	"cabmarket/pkg/kafka"
	"cabmarket/pkg/logger"
)

// Notifier delivers one notification to one user. Implementations
// must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, userID, subject, body string) error
}

// LogNotifier writes notifications to the service log. It stands in
// until an SMS or email channel is wired up.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, userID, subject, body string) error {
	n.log.Info("Notification delivered",
		"user_id", userID,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Handler adapts a Notifier to the Kafka consumer loop.
type Handler struct {
	notifier Notifier
	log      *logger.Logger
}

func NewHandler(notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		log:      log,
	}
}

// Handle decodes a booking event and sends the matching notification.
// A nil return commits the offset, so only delivery failures bubble
// up for retry.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		// A malformed payload will never decode. Log and commit so it
		// does not wedge the partition.
		h.log.Error("Failed to decode booking event", "key", msg.Key, "error", err)
		return nil
	}

	subject, body, ok := h.compose(event)
	if !ok {
		h.log.Warn("Unknown booking event type", "event_type", event.Type, "booking_id", event.BookingID)
		return nil
	}

	if err := h.notifier.Notify(ctx, event.UserID, subject, body); err != nil {
		return fmt.Errorf("failed to notify user %s: %w", event.UserID, err)
	}

	h.log.Debug("Booking event handled", "event_type", event.Type, "booking_id", event.BookingID)
	return nil
}

func (h *Handler) compose(event events.BookingEvent) (subject, body string, ok bool) {
	switch event.Type {
	case events.TypeBookingCreated:
		return "Booking confirmed",
			fmt.Sprintf("Your cab is booked for %s at %s. Fare: %.2f.",
				event.TravelDate, event.PickupTime, event.Fare),
			true
	case events.TypeBookingCancelled:
		return "Booking cancelled",
			fmt.Sprintf("Your booking for %s at %s has been cancelled.",
				event.TravelDate, event.PickupTime),
			true
	case events.TypeBookingClaimed:
		return "Reward credited",
			fmt.Sprintf("%.0f wallet points were credited for your completed trip.",
				event.WalletPoints),
			true
	default:
		return "", "", false
	}
}
