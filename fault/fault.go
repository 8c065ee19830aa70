// Package fault defines the typed error taxonomy shared by the tool layers.
//
// Every error that reaches the request dispatcher is either a *Error or an
// unclassified backend error. Kind lets callers branch on the category without
// string matching.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies errors raised below the dispatcher.
type Kind string

const (
	// KindAccessDenied indicates a capability probe failed. The message names the
	// privacy setting the user must enable.
	KindAccessDenied Kind = "access_denied"
	// KindValidation indicates malformed or missing arguments.
	KindValidation Kind = "validation"
	// KindUnknownTool indicates the requested tool is not registered.
	KindUnknownTool Kind = "unknown_tool"
	// KindUnknownOperation indicates the operation is not offered by the tool.
	KindUnknownOperation Kind = "unknown_operation"
	// KindSourceUnavailable indicates one backing store failed. It is recovered
	// inside the aggregator and only appears in logs.
	KindSourceUnavailable Kind = "source_unavailable"
	// KindDomainAccess indicates every backing store of a domain failed.
	KindDomainAccess Kind = "domain_access"
	// KindCreateFailed indicates the backing store rejected an insert.
	KindCreateFailed Kind = "create_failed"
	// KindMutateFailed indicates the backing store rejected a field update.
	KindMutateFailed Kind = "mutate_failed"
	// KindNotFound indicates a referenced item does not exist.
	KindNotFound Kind = "not_found"
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown Kind = "unknown"
)

// Error is the typed error raised by the tool layers.
type Error struct {
	Kind    Kind
	Domain  string
	Field   string
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "fault: <nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Domain != "" {
		return e.Domain + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf reports the Kind of err, looking through wrapping.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Validation returns a validation error naming field.
func Validation(field string, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error for an item id within domain.
func NotFound(domain string, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Domain: domain, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and domain to err. A nil err yields nil.
func Wrap(err error, kind Kind, domain string, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Domain: domain, Message: message, Err: err}
}
