package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrCarUnavailable = errors.New("car is already booked")

	ErrAlreadyClaimed = errors.New("booking reward already claimed")
)
