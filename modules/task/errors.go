package task

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for task operations.
var (
	// ErrTaskNotFound is returned when the task does not exist or lies outside the
	// requester's scope. The two cases are not distinguished.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAnonymous is returned when an operation is attempted without an identity.
	ErrAnonymous = errors.New("requester is not authenticated")
)

// ValidationError carries per-field messages for a rejected task form.
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
	return "invalid task form: " + strings.Join(parts, "; ")
}

const (
	codeNotFound  = "not_found"
	codeInvalid   = "invalid"
	codeAnonymous = "anonymous"
)

// Failure is embedded in every service response and carries domain errors across
// the service container.
type Failure struct {
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func failureFrom(err error) (Failure, bool) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return Failure{Error: codeInvalid, Fields: verr.Fields}, true
	case errors.Is(err, ErrTaskNotFound):
		return Failure{Error: codeNotFound}, true
	case errors.Is(err, ErrAnonymous):
		return Failure{Error: codeAnonymous}, true
	}
	return Failure{}, false
}

// Err decodes f back into the error the service returned.
func (f Failure) Err() error {
	switch f.Error {
	case "":
		return nil
	case codeInvalid:
		return &ValidationError{Fields: f.Fields}
	case codeNotFound:
		return ErrTaskNotFound
	case codeAnonymous:
		return ErrAnonymous
	}
	return errors.New(f.Error)
}
