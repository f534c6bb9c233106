package errors

import "errors"

var (
	ErrNotFound = errors.New("car not found")

	ErrInvalidID = errors.New("invalid car ID format")

	ErrUnavailable = errors.New("car is already booked")

	ErrNotBooked = errors.New("car is not currently booked")
)
