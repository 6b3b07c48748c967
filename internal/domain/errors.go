package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by repositories and services for missing rows.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers unknown email, bad password, inactive
	// account and users without a password alike.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	// ErrDefaultRoleMissing means the role catalog was never seeded.
	ErrDefaultRoleMissing = errors.New("default 'tenant' role does not exist")
)

// NonFieldErrors is the key for errors that concern the whole record.
const NonFieldErrors = "non_field_errors"

// ValidationError carries field -> messages. It is rendered as the 400 body.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty error ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// FieldError is shorthand for a single field failure.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// Add appends message to field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no messages were added.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e as an error, or nil when no messages were added.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
