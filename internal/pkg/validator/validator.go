package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zonetune/zonetune/internal/domain/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("repeatunit", validateRepeatUnit)
}

func Get() *validator.Validate {
	return validate
}

func Validate(s interface{}) error {
	return validate.Struct(s)
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors flattens a validator error into field-level messages suitable for
// an API response.
func Errors(err error) []ValidationError {
	var out []ValidationError
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}
	for _, fieldErr := range validationErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fieldErr.Field()),
			Message: message(fieldErr),
		})
	}
	return out
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "repeatunit":
		return fmt.Sprintf("must be one of %v", models.RepeatUnits)
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}

func validateRepeatUnit(fl validator.FieldLevel) bool {
	return models.RepeatUnit(fl.Field().String()).Valid()
}
