package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	usPhoneRegex = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	clockRegex   = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// Messages returned to the customer, keyed by JSON field name.
var fieldMessages = map[string]string{
	"customerName":  "Name is required",
	"customerEmail": "Valid email is required",
	"phoneNumber":   "Valid phone number is required",
	"service":       "Service is required",
	"date":          "Valid date is required",
	"time":          "Valid time is required",
}

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

// Fields converts the violations to the shape carried by a ValidationError
// AppError.
func (v ValidationErrors) Fields() []apperrors.FieldError {
	fields := make([]apperrors.FieldError, 0, len(v))
	for _, err := range v {
		fields = append(fields, apperrors.FieldError{Field: err.Field, Message: err.Message})
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("usphone", validateUSPhone); err != nil {
		log.Fatal("Failed to register 'usphone' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateUSPhone(fl validator.FieldLevel) bool {
	return usPhoneRegex.MatchString(fl.Field().String())
}

func validateClock(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

// Validate checks every field of the request and reports all violations at
// once, in declaration order.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message, ok := fieldMessages[err.Field()]
		if !ok {
			message = fmt.Sprintf("%s is invalid", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
