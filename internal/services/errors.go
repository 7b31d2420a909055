package services

import (
	"errors"
	"fmt"
)

var ErrDealNotFound = errors.New("deal not found")

// ValidationError is returned before anything reaches the store, so the
// caller can show it next to the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
