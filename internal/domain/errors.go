package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// AuthErrorKind enumerates why an authentication or authorization step failed.
type AuthErrorKind string

const (
	InvalidCredentials AuthErrorKind = "invalid_credentials"
	AccountDisabled    AuthErrorKind = "account_disabled"
	InvalidToken       AuthErrorKind = "invalid_token"
	Expired            AuthErrorKind = "token_expired"
)

type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

// Error never says which of username or password was wrong.
func (e AuthError) Error() string {
	switch e.Kind {
	case InvalidCredentials:
		return "Invalid credentials"
	case AccountDisabled:
		return "Account is disabled"
	case Expired:
		return "Token has expired"
	default:
		return "Invalid token"
	}
}

func (e AuthError) Unwrap() error { return e.Err }

// DataIntegrityError marks a stored record whose fields cannot be interpreted,
// e.g. a departure time that is not HH:MM.
type DataIntegrityError struct {
	EntryID int64
	Field   string
	Value   string
	Err     error
}

func (e DataIntegrityError) Error() string {
	return fmt.Sprintf("entry %d: malformed %s %q", e.EntryID, e.Field, e.Value)
}

func (e DataIntegrityError) Unwrap() error { return e.Err }

// UpstreamError wraps failures of the backing store.
type UpstreamError struct {
	Op  string
	Err error
}

func (e UpstreamError) Error() string {
	if e.Op == "" {
		return "upstream unavailable"
	}
	return fmt.Sprintf("%s: upstream unavailable", e.Op)
}

func (e UpstreamError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsDataIntegrity(err error) bool {
	var target DataIntegrityError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}

// AsAuth reports the auth failure kind carried by err, if any.
func AsAuth(err error) (AuthErrorKind, bool) {
	var target AuthError
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return "", false
}
