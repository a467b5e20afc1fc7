// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// capacityPattern accepts values whose leading text is a non-negative number,
// e.g. "120", "12.5", "100 kW".
var capacityPattern = regexp.MustCompile(`^\s*\d+(\.\d+)?`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// customTags are registered on every Validator.
var customTags = map[string]validator.Func{
	"capacity": validateCapacity,
	"notblank": validateNotBlank,
}

// New creates a new Validator instance with the domain tags registered.
// A tag that fails to register is a programming error and panics.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register validation %q: %v", tag, err))
		}
	}
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

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func validateCapacity(fl validator.FieldLevel) bool {
	return capacityPattern.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
