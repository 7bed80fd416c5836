package validation

import (
	"github.com/go-playground/validator/v10"

	"kishanmitra/client/internal/lang"
)

// New returns a validator with the client's custom tags registered:
//
//	langcode  the field is a supported language code (see package lang)
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return lang.IsSupported(fl.Field().String())
	})
	return v
}
