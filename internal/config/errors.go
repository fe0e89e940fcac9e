package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError describes a setting that failed to decode or validate.
type ValidationError struct {
	// Path is the setting path, e.g. "zoom.smooth_sensitivity".
	Path string
	// Value is the offending value.
	Value any
	// Message describes the problem.
	Message string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s = %v: %s", e.Path, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(path string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Value: value, Message: fmt.Sprintf(format, args...)}
}
