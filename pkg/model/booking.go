package model

import (
	"time"
)

const (
	BookingStatusActive   = "active"
	BookingStatusInactive = "inactive"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// Booking reserves one car for one user on a scheduled trip. TravelDate
// and PickupTime keep the textual day-month-year / hour:minute forms the
// clients send; the cancellation policy parses them on demand.
type Booking struct {
	ID              string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID          string `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	CarID           string `json:"car_id" bson:"car_id" validate:"required,mongodb"`
	TravelDate      string `json:"travel_date" bson:"travel_date" validate:"required"`
	PickupTime      string `json:"pickup_time" bson:"pickup_time" validate:"required"`
	PickupLocation  string `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropLocation    string `json:"drop_location" bson:"drop_location" validate:"required"`
	Luggage         int    `json:"luggage" bson:"luggage" validate:"min=0"`
	ExtraPassengers int    `json:"extra_passengers" bson:"extra_passengers" validate:"min=0,max=2"`

	ExtraPassengerFare float64 `json:"extra_passenger_fare" bson:"extra_passenger_fare"`
	Fare               float64 `json:"fare" bson:"fare"`
	DistanceKm         float64 `json:"distance_km" bson:"distance_km"`

	PaymentStatus string     `json:"payment_status" bson:"payment_status" validate:"omitempty,oneof=Pending Paid"`
	PaymentMethod string     `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty" bson:"payment_date,omitempty"`

	Status  string `json:"status" bson:"status" validate:"omitempty,oneof=active inactive"`
	Claimed bool   `json:"claimed" bson:"claimed"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// User is the populated owner summary, attached on reads for display.
	// Never persisted with the booking document.
	User *UserSummary `json:"user,omitempty" bson:"-"`
}

// BookingUpdate is a field-level patch of editable trip details. Nil or
// zero fields leave the stored value untouched.
type BookingUpdate struct {
	TravelDate      string `json:"travel_date,omitempty"`
	PickupTime      string `json:"pickup_time,omitempty"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropLocation    string `json:"drop_location,omitempty"`
	Luggage         *int   `json:"luggage,omitempty" validate:"omitempty,min=0"`
	ExtraPassengers *int   `json:"extra_passengers,omitempty" validate:"omitempty,min=0,max=2"`

	PaymentStatus string     `json:"payment_status,omitempty" validate:"omitempty,oneof=Pending Paid"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}
