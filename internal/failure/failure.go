// Package failure defines the error taxonomy shared by the credential store,
// the Notion client, the tool registry and the dispatcher.
//
// Every error is constructed where it is detected, carries enough context to
// be actionable (field name, HTTP status, remote body) and is propagated
// unchanged up to the transport shell.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a class of failure.
type Kind string

const (
	// CredentialNotFound is returned when no API token could be resolved.
	CredentialNotFound Kind = "CredentialNotFound"
	// TransportError is returned for network-level failures, including timeouts.
	TransportError Kind = "TransportError"
	// AuthError is returned when the remote API answers 401 or 403.
	AuthError Kind = "AuthError"
	// RateLimited is returned when the remote API answers 429.
	RateLimited Kind = "RateLimited"
	// RemoteError is returned for any other 4xx/5xx answer.
	RemoteError Kind = "RemoteError"
	// MalformedResponse is returned when a response body is not a JSON object.
	MalformedResponse Kind = "MalformedResponse"
	// UnknownTool is returned when a tool name is not in the registry.
	UnknownTool Kind = "UnknownTool"
	// MissingArgument is returned when a required argument is absent.
	MissingArgument Kind = "MissingArgument"
	// InvalidArgument is returned when an argument has the wrong kind or value.
	InvalidArgument Kind = "InvalidArgument"
	// InternalError covers failures outside the taxonomy (keyring I/O, encoding).
	InternalError Kind = "InternalError"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// With returns a copy of e with key set in its detail map.
func (e *Error) With(key string, value any) *Error {
	out := *e
	out.Detail = make(map[string]any, len(e.Detail)+1)
	for k, v := range e.Detail {
		out.Detail[k] = v
	}
	out.Detail[key] = value
	return &out
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Missing reports a required argument that was not supplied.
func Missing(field string) *Error {
	return &Error{
		Kind:    MissingArgument,
		Message: fmt.Sprintf("missing required argument %q", field),
		Detail:  map[string]any{"field": field},
	}
}

// Invalid reports an argument whose value does not match the expected kind.
func Invalid(field, expected string) *Error {
	return &Error{
		Kind:    InvalidArgument,
		Message: fmt.Sprintf("argument %q must be %s", field, expected),
		Detail:  map[string]any{"field": field, "expected": expected},
	}
}

// Unknown reports a tool name that is not registered.
func Unknown(tool string) *Error {
	return &Error{
		Kind:    UnknownTool,
		Message: fmt.Sprintf("unknown tool %q", tool),
		Detail:  map[string]any{"tool": tool},
	}
}

// As extracts a *Error from err. Errors outside the taxonomy are classified
// as InternalError.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return &Error{Kind: InternalError, Message: err.Error(), Cause: err}
}

// KindOf returns the Kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

// Is reports whether err is a failure of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
