package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cabmarket/internal/bookings/policy"
	"cabmarket/pkg/logger"
	"cabmarket/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks struct tags plus the schedule fields. The travel date
// and pickup time must parse into a future departure; an unparseable
// schedule is rejected here rather than slipping past the cancellation
// policy later.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	departure, err := policy.DepartureTime(booking.TravelDate, booking.PickupTime, time.Local)
	if err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "TravelDate",
				Message: err.Error(),
			},
		}
	}

	if departure.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "TravelDate",
				Message: "departure cannot be in the past",
			},
		}
	}

	return nil
}

// ValidateUpdate checks only the fields present in the patch.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.TravelDate != "" || update.PickupTime != "" {
		if update.TravelDate == "" || update.PickupTime == "" {
			return ValidationErrors{
				ValidationError{
					Field:   "TravelDate",
					Message: "travel_date and pickup_time must be updated together",
				},
			}
		}
		if _, err := policy.DepartureTime(update.TravelDate, update.PickupTime, time.Local); err != nil {
			return ValidationErrors{
				ValidationError{
					Field:   "TravelDate",
					Message: err.Error(),
				},
			}
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
