package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = errors.New("email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password so a
	// caller cannot enumerate registered addresses.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers unknown and expired remember tokens alike; it is
	// a silent fall-through to the login flow, never a user-facing fault.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError reports input rejected before any persistence. Fields
// names the offending inputs so a form can highlight them.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
	}
	return e.Reason
}

func missingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: "missing required fields"}
}
