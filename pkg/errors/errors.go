package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates a downstream dependency is not reachable
	ErrUnavailable = errors.New("service unavailable")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// UnavailableError wraps a downstream failure as unavailable
func UnavailableError(dependency string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", dependency, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", dependency, ErrUnavailable, err)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
