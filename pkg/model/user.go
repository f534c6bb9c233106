package model

// UserSummary is the read-only projection of a user document attached to
// bookings and reviews for display. Account management lives outside
// this service; only the fields the populate join selects are read.
type UserSummary struct {
	ID           string `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone" bson:"phone"`
	ProfileImage string `json:"profile_image,omitempty" bson:"profile_img,omitempty"`
}
