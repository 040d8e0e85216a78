package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP boundary can map them to status codes.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidMethod
	KindMissingCredential
	KindInvalidCredential
	KindMissingField
	KindUpstreamRead
	KindUpstreamWrite
)

// String returns the string representation of the ErrorKind.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return "Unknown"
	}
	return errorKindNames[k]
}

var errorKindNames = [...]string{
	KindUnknown:           "Unknown",
	KindInvalidMethod:     "InvalidMethod",
	KindMissingCredential: "MissingCredential",
	KindInvalidCredential: "InvalidCredential",
	KindMissingField:      "MissingPayloadField",
	KindUpstreamRead:      "UpstreamReadFailure",
	KindUpstreamWrite:     "UpstreamWriteFailure",
}

// Error is a classified failure. Status and Details are only set for upstream
// failures, where they carry the GitHub status code and response body.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Details any
	Err     error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewMissingFieldError reports a missing or invalid payload field.
func NewMissingFieldError(field string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Message: "Missing required fields: token, owner, repo, issueNumber, body",
		Details: field,
	}
}

// NewUpstreamError wraps a failed GitHub API call.
func NewUpstreamError(kind ErrorKind, status int, message string, details any, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Details: details, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// WithKind returns a copy of e reclassified as kind. Used to turn a transport
// failure into a read or write failure depending on the call that failed.
func (e *Error) WithKind(kind ErrorKind) *Error {
	cp := *e
	cp.Kind = kind
	return &cp
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown when err is not classified.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknown
}
