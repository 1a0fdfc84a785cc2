package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when a resource or screen is unknown to the gateway.
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

// ValidationError is a client-side validation failure caught before any request is issued.
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

// ValidationErrors groups several field failures of one payload.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "validation error"
	case 1:
		return e[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
	}
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// ErrorKind classifies failures of calls against the remote API.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"
	KindHTTP         ErrorKind = "http"
	KindApplication  ErrorKind = "application"
	KindDecode       ErrorKind = "decode"
	KindUnauthorized ErrorKind = "unauthorized"
)

// APIError is the typed failure of a remote API call.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = FallbackMessage(e.Status)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e APIError) Unwrap() error { return e.Err }

// FallbackMessage is used when the server does not supply a message.
func FallbackMessage(status int) string {
	switch {
	case status == 0:
		return "could not reach the server"
	case status == http.StatusUnauthorized:
		return "your session has expired, please sign in again"
	case status == http.StatusForbidden:
		return "you are not allowed to perform this action"
	case status == http.StatusNotFound:
		return "the requested record does not exist"
	case status == http.StatusUnprocessableEntity:
		return "the submitted data was rejected"
	case status >= 500:
		return fmt.Sprintf("server error (%d), please try again later", status)
	default:
		return fmt.Sprintf("request failed with status %d", status)
	}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	if errors.As(err, &target) {
		return true
	}
	var many ValidationErrors
	return errors.As(err, &many)
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (APIError, bool) {
	var target APIError
	if errors.As(err, &target) {
		return target, true
	}
	return APIError{}, false
}

func IsUnauthorized(err error) bool {
	e, ok := AsAPIError(err)
	return ok && e.Kind == KindUnauthorized
}

func IsTransport(err error) bool {
	e, ok := AsAPIError(err)
	return ok && e.Kind == KindTransport
}
