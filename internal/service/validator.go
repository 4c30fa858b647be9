package service

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the custom rules the request payloads
// rely on.
func NewValidator() *validator.Validate {
	v := validator.New()
	// beforenow: date values must not lie in the future (birth dates).
	_ = v.RegisterValidation("beforenow", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !t.After(time.Now())
	})
	return v
}
