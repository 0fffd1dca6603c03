// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with domain validations registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("phone", validPhone)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// validPhone accepts any number nyaruka/phonenumbers can parse for the
// default region (IN). Stored numbers are normalized separately.
func validPhone(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}
	num, err := phonenumbers.Parse(raw, "IN")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
