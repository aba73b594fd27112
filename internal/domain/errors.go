package domain

import "errors"

// ErrValidation matches any *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports empty or mismatched form fields. It is raised before
// any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError with the given message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}
