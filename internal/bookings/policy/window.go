// Package policy decides whether a booking may still be cancelled or
// edited, based on how close its departure is.
package policy

import (
	"fmt"
	"time"
)

// Layouts for the textual trip schedule fields carried on a booking.
const (
	TravelDateLayout = "2-1-2006"
	PickupTimeLayout = "15:04"
)

// DepartureTime combines the booking's travel date and pickup time into
// a single instant in the given location. Both fields must parse; a
// malformed value is a hard error, never an implicit permit.
func DepartureTime(travelDate, pickupTime string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	date, err := time.ParseInLocation(TravelDateLayout, travelDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid travel date %q: expected day-month-year: %w", travelDate, err)
	}

	clock, err := time.Parse(PickupTimeLayout, pickupTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pickup time %q: expected hour:minute: %w", pickupTime, err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		loc,
	), nil
}

// Window is the minimum lead time required before departure for a
// booking to remain cancellable.
type Window struct {
	hours float64
}

func NewWindow(hours float64) Window {
	return Window{hours: hours}
}

// CanCancel reports whether now is at least the window ahead of
// departure. Exactly on the boundary still permits cancellation.
func (w Window) CanCancel(departure, now time.Time) bool {
	return departure.Sub(now).Hours() >= w.hours
}

// Hours exposes the configured window for error messages.
func (w Window) Hours() float64 {
	return w.hours
}
