package model

import "time"

type Driver struct {
	ID             string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	BloodGroup     string `json:"blood_group,omitempty" bson:"blood_group,omitempty"`
	Email          string `json:"email" bson:"email" validate:"required,email"`
	Phone          string `json:"phone" bson:"phone" validate:"required,min=7,max=20"`
	DrivingLicense string `json:"driving_license" bson:"driving_license" validate:"required"`
	ProfileImage   string `json:"profile_image,omitempty" bson:"profile_image,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type DriverUpdate struct {
	Name           string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	BloodGroup     string `json:"blood_group,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	DrivingLicense string `json:"driving_license,omitempty"`
	ProfileImage   string `json:"profile_image,omitempty"`
}
