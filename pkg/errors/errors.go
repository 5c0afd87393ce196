package errors

import (
	"errors"
	"fmt"
)

// Standard errors
var (
	// ErrPatientNotFound is returned when a patient record does not exist
	ErrPatientNotFound = errors.New("patient not found")

	// ErrInvalidConfig is returned when the configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingAPIKey is returned when a required API credential is absent
	ErrMissingAPIKey = errors.New("API key not provided")

	// ErrNoResults is returned when a retrieval yields nothing usable
	ErrNoResults = errors.New("no results")

	// ErrMemoryUnavailable is returned when the vector memory store is unavailable
	ErrMemoryUnavailable = errors.New("vector memory store unavailable")
)

// Wrap wraps an error with additional context
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience function that wraps errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target, and if so, sets
// target to that error value and returns true. Otherwise, it returns false.
// This is a convenience function that wraps errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
