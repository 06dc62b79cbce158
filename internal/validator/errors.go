package validator

import (
	"github.com/fieldscope/survey-service/internal/errors"
)

// Handlers and services exchange one validation error shape, defined in the
// errors package. Aliased here so call sites inside this package stay short.
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors translates go-playground field errors into the shared type.
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}
