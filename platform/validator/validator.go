// Package validator wraps struct validation for the transport layer.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates transport structs against their validate tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the custom rules the API relies on.
// "notblank" rejects strings that are empty after trimming; the plain
// "required" tag accepts a string of spaces.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", notBlank)
	return &Validator{v: v}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates a struct based on its validate tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}
