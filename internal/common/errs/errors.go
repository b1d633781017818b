package errs

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication       = errors.New("not authenticated")
	ErrAuthorization        = errors.New("insufficient permissions")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicate            = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrImmutableEntity      = errors.New("system entity cannot be modified")
	ErrConflict             = errors.New("entity is still referenced")
	ErrConfirmationRequired = errors.New("explicit confirmation required")
	ErrSelfDeletion         = errors.New("cannot delete your own account")
	ErrLastSuperAdmin       = errors.New("cannot remove the last super administrator")
	ErrSessionNotRestored   = errors.New("auth session did not return to the acting user")
)

// ValidationError describes a single field-level rule violation.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: failed rule %q", e.Field, e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Validation(field, rule, message string) error {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}

// AsValidation returns the first ValidationError in err's chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
