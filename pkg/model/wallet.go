package model

import "time"

// WalletEntry is an append-only reward credit tied to a claimed booking.
type WalletEntry struct {
	ID        string  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string  `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	BookingID string  `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	Amount    float64 `json:"amount" bson:"amount" validate:"gt=0"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
