// Package services implements authentication and the contact book on top of
// injected stores. Callers match failures with errors.Is against the sentinels below.
package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrValidation marks a missing, empty or oversized field; the wrapped message names it.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when registering a username that already exists.
	ErrConflict = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when deleting a contact that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for protected operations without a live session.
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	maxUsernameLen = 50
	maxNameLen     = 100
	maxPhoneLen    = 20
)

// field is a named form value checked by requireFields
type field struct {
	name   string
	value  string
	maxLen int
}

// requireFields reports the first field that is empty or longer than its limit.
// Values must already be trimmed.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	switch len(missing) {
	case 0:
	case 1:
		return fmt.Errorf("%w: %s is required", ErrValidation, missing[0])
	default:
		return fmt.Errorf("%w: %s are required", ErrValidation, strings.Join(missing, " and "))
	}

	for _, f := range fields {
		if f.maxLen > 0 && utf8.RuneCountInString(f.value) > f.maxLen {
			return fmt.Errorf("%w: %s must be at most %d characters", ErrValidation, f.name, f.maxLen)
		}
	}
	return nil
}
