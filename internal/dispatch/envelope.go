package dispatch

import (
	"github.com/fyrsmithlabs/notionctl/internal/failure"
)

// Status is the outcome recorded in an Envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Envelope is the uniform reply to every invocation, whatever the transport.
type Envelope struct {
	Status  Status `json:"status" yaml:"status"`
	Payload any    `json:"payload" yaml:"payload"`
}

// ErrorPayload is the payload of an error Envelope.
type ErrorPayload struct {
	Kind    failure.Kind   `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Detail  map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Success wraps a handler result.
func Success(payload any) Envelope {
	return Envelope{Status: StatusSuccess, Payload: payload}
}

// Failure wraps err. Errors outside the taxonomy become InternalError.
func Failure(err error) Envelope {
	fe := failure.As(err)
	if fe == nil {
		fe = failure.New(failure.InternalError, "unknown error")
	}
	return Envelope{
		Status: StatusError,
		Payload: ErrorPayload{
			Kind:    fe.Kind,
			Message: fe.Message,
			Detail:  fe.Detail,
		},
	}
}

// OK reports whether the envelope carries a success payload.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// AsError returns the error payload, if any.
func (e Envelope) AsError() (ErrorPayload, bool) {
	p, ok := e.Payload.(ErrorPayload)
	return p, ok
}
