package model

import "time"

// Car is a bookable vehicle. IsBooked is flipped exclusively through the
// booking lifecycle; at most one active booking holds it at a time.
type Car struct {
	ID          string  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" bson:"description" validate:"required,min=2,max=500"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty"`
	Seats       int     `json:"seats" bson:"seats" validate:"required,min=1,max=20"`
	MaxWeight   float64 `json:"max_weight" bson:"max_weight" validate:"required,gt=0"`
	Price       float64 `json:"price" bson:"price" validate:"min=0"`
	Type        string  `json:"type" bson:"type"`

	IsBooked  bool     `json:"is_booked" bson:"is_booked"`
	ReviewIDs []string `json:"review_ids,omitempty" bson:"review_ids,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CarUpdate is a field-level patch for admin edits.
type CarUpdate struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description string   `json:"description,omitempty" validate:"omitempty,min=2,max=500"`
	Image       string   `json:"image,omitempty"`
	Seats       *int     `json:"seats,omitempty" validate:"omitempty,min=1,max=20"`
	MaxWeight   *float64 `json:"max_weight,omitempty" validate:"omitempty,gt=0"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Type        string   `json:"type,omitempty"`
}
