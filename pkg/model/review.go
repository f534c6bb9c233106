package model

import "time"

type Review struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CarID   string `json:"car_id" bson:"car_id" validate:"required,mongodb"`
	UserID  string `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Content string `json:"content" bson:"content" validate:"required,min=1,max=2000"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	User *UserSummary `json:"user,omitempty" bson:"-"`
}
