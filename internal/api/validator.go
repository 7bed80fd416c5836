package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	app_errors "kishanmitra/client/internal/errors"
	"kishanmitra/client/internal/validation"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validation.New()
	})
	return validate
}

// validateRequest checks a request DTO against its `validate` tags and
// returns a wrapped app_errors.ErrValidation listing every failed field.
func validateRequest(payload interface{}) error {
	err := getInstance().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: an unexpected error occurred during validation: %s", app_errors.ErrValidation, err.Error())
	}

	var errorMessages []string
	for _, fieldErr := range validationErrors {
		errorMessages = append(errorMessages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(errorMessages, "; "))
}
