package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplateConfiguration indicates a template cannot be
// instantiated because it lacks an entry stage.
var ErrInvalidTemplateConfiguration = errors.New("template has no entry stage")

// ValidationError reports one rejected field submission. The whole
// completion is refused; nothing is written.
type ValidationError struct {
	FieldModelID string
	FieldName    string
	Reason       string
}

func (e *ValidationError) Error() string {
	if e.FieldModelID != "" {
		return fmt.Sprintf("field %q (%s): %s", e.FieldName, e.FieldModelID, e.Reason)
	}

	return fmt.Sprintf("field %q: %s", e.FieldName, e.Reason)
}

// IsValidationFailed checks whether an error is a field validation
// rejection.
func IsValidationFailed(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// IsInvalidTemplateConfiguration checks whether an error means the
// template has no entry stage.
func IsInvalidTemplateConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidTemplateConfiguration)
}
