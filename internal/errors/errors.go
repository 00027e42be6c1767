package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common error types for the PCRS client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Session errors
	ErrNoSession           = errors.New("no session")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Request errors
	ErrValidation = errors.New("validation failed")
	ErrNetwork    = errors.New("network failure")
	ErrServer     = errors.New("server error")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// FieldErrors maps a form field to a single display message.
type FieldErrors map[string]string

// String renders the field errors in a stable order.
func (f FieldErrors) String() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, ", ")
}

// ValidationError is returned when a payload fails required-field checks
// before it is sent, or when the server rejects it with a field map.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + v.Fields.String()
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single import.
func New(text string) error {
	return errors.New(text)
}
