package kafka

import (
	"context"
	"errors"
	"testing"
)

func retryMessage() Message {
	return Message{
		Key:     "booking-1",
		Value:   []byte(`{}`),
		Headers: map[string]string{},
	}
}

func TestProcessMessageRetriesTransientFailures(t *testing.T) {
	attempts := 0
	c := &Consumer{
		maxRetries: 3,
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			if attempts < 3 {
				return errors.New("connection refused")
			}
			return nil
		},
	}

	if err := c.processMessage(context.Background(), retryMessage()); err != nil {
		t.Fatalf("processMessage returned error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestProcessMessageStopsAtMaxRetries(t *testing.T) {
	attempts := 0
	transient := errors.New("i/o timeout")
	c := &Consumer{
		maxRetries: 2,
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			return transient
		},
	}

	err := c.processMessage(context.Background(), retryMessage())
	if !errors.Is(err, transient) {
		t.Fatalf("expected handler error, got %v", err)
	}
	// First attempt plus maxRetries further tries.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestProcessMessageDoesNotRetryPermanentFailures(t *testing.T) {
	attempts := 0
	c := &Consumer{
		maxRetries: 3,
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			return errors.New("malformed payload")
		},
	}

	if err := c.processMessage(context.Background(), retryMessage()); err == nil {
		t.Fatal("expected handler error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
