// Package services exposes the administrative operations around the
// engine: reference-data CRUD, the full-template view, and process
// listing with its execution history.
package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks a request rejected before touching the store.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// checkInput runs struct validation and wraps failures as ErrInvalidInput.
func checkInput(params any) error {
	err := validate.Struct(params)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	return nil
}

// IsInvalidInput checks whether an error is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
