package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"roomdesk/pkg/logger"
	"roomdesk/pkg/model"

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

// ResourceCatalog tells the validator which branch/room pairs exist.
type ResourceCatalog interface {
	Exists(resource model.Resource) bool
}

type BookingValidator struct {
	validate *validator.Validate
	catalog  ResourceCatalog
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, catalog ResourceCatalog) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		catalog:  catalog,
		logger:   log,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// ValidateForm checks the submitted dialog fields. Office bookings need a
// branch and room known to the catalog; remote bookings need a link.
func (v *BookingValidator) ValidateForm(form *model.BookingForm) error {
	if err := v.validate.Struct(form); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if form.Method == model.MethodOffice && v.catalog != nil && !v.catalog.Exists(form.Resource()) {
		return ValidationErrors{
			ValidationError{
				Field:   "room",
				Message: fmt.Sprintf("room %q is not available in branch %q", form.Room, form.Branch),
			},
		}
	}

	return nil
}

// Validate checks a fully built booking before it is stored.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !booking.Start.Valid() || !booking.End.Valid() {
		return ValidationErrors{
			ValidationError{
				Field:   "start",
				Message: "booking must start and end within the same day",
			},
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
		case "required_if":
			message = fmt.Sprintf("%s is required when %s", err.Field(), strings.Replace(strings.ToLower(err.Param()), " ", " is ", 1))
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), strings.ToLower(err.Param()))
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
