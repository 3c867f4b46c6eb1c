package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed API call.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindValidation   Kind = "validation_failed"
	KindNotFound     Kind = "not_found"
	KindRequest      Kind = "request_failed"
	KindServer       Kind = "server_error"
	KindNetwork      Kind = "network_error"
)

// GenericNetworkMessage is shown when the server did not provide an error message.
const GenericNetworkMessage = "network error, please try again"

// APIError is the error returned by every failed API call.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

// Predefined errors, usable as errors.Is targets. Matching is by Kind.
var (
	ErrUnauthorized = &APIError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: "unauthorized"}
	ErrValidation   = &APIError{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: "validation failed"}
	ErrNotFound     = &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: "resource not found"}
	ErrRequest      = &APIError{Kind: KindRequest, Message: "request failed"}
	ErrServer       = &APIError{Kind: KindServer, Status: http.StatusInternalServerError, Message: "server error"}
	ErrNetwork      = &APIError{Kind: KindNetwork, Message: GenericNetworkMessage}
)

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, e.fieldSummary())
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the wrapped error.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is an *APIError of the same kind.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}

	return t.Kind == e.Kind
}

// LogValue logs the kind and status next to the message.
func (e *APIError) LogValue() slog.Value {
	if e == nil {
		return slog.StringValue("<nil>")
	}

	return slog.GroupValue(slog.String("kind", string(e.Kind)), slog.Int("status", e.Status))
}

// Transient reports whether the failure is a transport or server-side problem.
func (e *APIError) Transient() bool {
	return e.Kind == KindServer || e.Kind == KindNetwork
}

func (e *APIError) fieldSummary() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}

	return strings.Join(parts, ", ")
}

// FieldErrors extracts field-level validation errors from err, if any.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
		return apiErr.Fields
	}

	return nil
}

// kindForStatus maps a non-2xx status code to an error kind.
func kindForStatus(status int, hasFields bool) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case (status == http.StatusUnprocessableEntity || status == http.StatusBadRequest) && hasFields:
		return KindValidation
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindRequest
	}
}
