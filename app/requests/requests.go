// Package requests handles request binding and validation.
package requests

import (
	"fmt"
	"net/url"

	"github.com/thedevsaddam/govalidator"
)

// ValidationError carries field level validation failures.
type ValidationError struct {
	Errors url.Values
}

// Error implements the error interface.
func (v ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", v.Errors)
}

// ValidateStruct validates a bound struct against rules.
func ValidateStruct(data interface{}, rules govalidator.MapData, messages govalidator.MapData) error {
	opts := govalidator.Options{
		Data:          data,
		Rules:         rules,
		TagIdentifier: "valid",
		Messages:      messages,
	}

	if errs := govalidator.New(opts).ValidateStruct(); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}
