// Package apperr defines the uniform error envelope used across every
// QuiltOps operation and surfaced verbatim in tool call results.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable, wire-visible error identifier (see spec §7).
type Kind string

const (
	AuthInvalid         Kind = "AUTH_INVALID"
	AuthNoCredentials   Kind = "AUTH_NO_CREDENTIALS"
	PermissionDenied    Kind = "PERMISSION_DENIED"
	NotFound            Kind = "NOT_FOUND"
	ConfigInvalid       Kind = "CONFIG_INVALID"
	ProtocolMismatch    Kind = "PROTOCOL_MISMATCH"
	MethodNotFound      Kind = "METHOD_NOT_FOUND"
	ValidationFailed    Kind = "VALIDATION_FAILED"
	Timeout             Kind = "TIMEOUT"
	UpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	Conflict            Kind = "CONFLICT"
	InUse               Kind = "IN_USE"
	Internal            Kind = "INTERNAL"
)

// retriable records which kinds are safe to retry, per the spec's table.
var retriable = map[Kind]bool{
	Timeout:             true,
	UpstreamUnavailable: true,
	Conflict:            true,
}

// Error is the structured failure envelope every QuiltOps operation returns
// instead of throwing. It also implements the standard error interface so it
// composes with errors.Is/errors.As and %w wrapping.
type Error struct {
	Kind         Kind
	Message      string
	Cause        error
	FixHint      string
	Alternatives []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retriable reports whether this error's kind is safe to retry.
func (e *Error) Retriable() bool { return retriable[e.Kind] }

// New builds an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind, chaining cause for diagnostics.
// The cause is never used for branching logic — only for the cause chain.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithFixHint returns a copy of e with FixHint set.
func (e *Error) WithFixHint(hint string) *Error {
	c := *e
	c.FixHint = hint
	return &c
}

// WithAlternatives returns a copy of e with Alternatives set.
func (e *Error) WithAlternatives(tools ...string) *Error {
	c := *e
	c.Alternatives = tools
	return &c
}

// As attempts to view err as an *Error, synthesizing an INTERNAL wrapper
// (with a truncated cause message, never a full stack) for anything else —
// this is the conversion the dispatcher applies to unmapped tool errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	msg := err.Error()
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return &Error{Kind: Internal, Message: "unexpected internal error", Cause: fmt.Errorf("%s", msg)}
}
