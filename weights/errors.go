package weights

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal run conditions. Every error returned by this module for one of these
// conditions satisfies errors.Is against the matching sentinel.
var (
	// ErrInputNotFound reports that the designated profile artifact does not exist.
	ErrInputNotFound = errors.New("profile input not found")
	// ErrMalformedProfile reports structurally invalid profile content.
	ErrMalformedProfile = errors.New("malformed profile")
	// ErrEmptyProfileSet reports a profile with zero heads.
	ErrEmptyProfileSet = errors.New("empty profile set")
	// ErrInvalidCoefficients reports coefficients that are negative, non-finite,
	// or do not sum to 1.0.
	ErrInvalidCoefficients = errors.New("invalid coefficients")
)

// ProfileError describes one invalid field of one head.
type ProfileError struct {
	Head   string
	Field  string
	Reason string
}

func (e *ProfileError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed profile: head %q: %s", e.Head, e.Reason)
	}
	return fmt.Sprintf("malformed profile: head %q: %s: %s", e.Head, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedProfile.
func (e *ProfileError) Unwrap() error { return ErrMalformedProfile }

// SchemaError collects every schema violation found in a profile document.
type SchemaError struct {
	Source     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed profile %s: %d schema violation(s): %s",
		e.Source, len(e.Violations), strings.Join(e.Violations, "; "))
}

// Unwrap lets errors.Is match ErrMalformedProfile.
func (e *SchemaError) Unwrap() error { return ErrMalformedProfile }
