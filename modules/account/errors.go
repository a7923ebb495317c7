package account

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for account operations.
var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when the requester may not act on another user's profile.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned by Login for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned by Authenticate for a missing, invalid or
	// expired session, or one whose user no longer exists.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUsernameTaken is returned by the repository on a unique violation.
	ErrUsernameTaken = errors.New("username already taken")
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid account form: " + strings.Join(parts, "; ")
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error codes carried in service responses so callers on the other side of the
// service container can recover the sentinel errors.
const (
	codeNotFound           = "not_found"
	codeForbidden          = "forbidden"
	codeInvalid            = "invalid"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthenticated    = "unauthenticated"
)

// Failure is embedded in every service response.
type Failure struct {
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// failureFrom encodes domain errors. ok is false for errors that should travel as
// plain service errors instead.
func failureFrom(err error) (Failure, bool) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return Failure{Error: codeInvalid, Fields: verr.Fields}, true
	case errors.Is(err, ErrUserNotFound):
		return Failure{Error: codeNotFound}, true
	case errors.Is(err, ErrForbidden):
		return Failure{Error: codeForbidden}, true
	case errors.Is(err, ErrInvalidCredentials):
		return Failure{Error: codeInvalidCredentials}, true
	case errors.Is(err, ErrUnauthenticated):
		return Failure{Error: codeUnauthenticated}, true
	}
	return Failure{}, false
}

// Err decodes f back into the error the service returned.
func (f Failure) Err() error {
	switch f.Error {
	case "":
		return nil
	case codeInvalid:
		return newValidationError(f.Fields)
	case codeNotFound:
		return ErrUserNotFound
	case codeForbidden:
		return ErrForbidden
	case codeInvalidCredentials:
		return ErrInvalidCredentials
	case codeUnauthenticated:
		return ErrUnauthenticated
	}
	return errors.New(f.Error)
}
