// Package apperr defines the application error kinds returned by services.
// Each kind maps to an HTTP status; the message is safe to show to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind uint8

const (
	Internal Kind = iota
	Validation
	InvalidState
	Conflict
	Unauthorized
	InvalidToken
	Forbidden
	LimitReached
	NotFound
	ExhaustedRetries
)

// GenericMessage is what clients see for internal failures.
const GenericMessage = "An error has occurred. Please try again later."

// Error is a domain failure with a status hint and a client-facing message.
type Error struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

// E builds an *Error. cause may be nil.
func E(op string, kind Kind, message string, cause error) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     cause,
	}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Internal:
		return "Internal"
	case Validation:
		return "Validation"
	case InvalidState:
		return "InvalidState"
	case Conflict:
		return "Conflict"
	case Unauthorized:
		return "Unauthorized"
	case InvalidToken:
		return "InvalidToken"
	case Forbidden:
		return "Forbidden"
	case LimitReached:
		return "LimitReached"
	case NotFound:
		return "NotFound"
	case ExhaustedRetries:
		return "ExhaustedRetries"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Validation, InvalidState:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized, InvalidToken:
		return http.StatusUnauthorized
	case Forbidden, LimitReached:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ExhaustedRetries:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindOf reports the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Public returns the status and message to send to a client.
// Internal errors and errors outside this package get the generic message.
func Public(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return http.StatusInternalServerError, GenericMessage
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Kind.Status())
	}
	return e.Kind.Status(), msg
}
