package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tags on request types
// drive field-level validation; the instance is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single invalid request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// validateStruct runs tag-based validation and converts the result into
// client-facing field errors. Returns nil when the value is valid.
func validateStruct(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Reason: "invalid request"}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:  strings.ToLower(fe.Field()),
			Reason: reasonForTag(fe),
		})
	}
	return fields
}

// reasonForTag renders a validator tag as a human-readable reason.
func reasonForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
