// Package upstream implements the typed request/response layer over the
// LegiScan HTTP API. This file defines the classified error type and the
// single function that maps the upstream's English error prose onto it.
package upstream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an upstream failure so route handlers can pick an
// appropriate status without re-parsing upstream prose.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindRateLimited  ErrorKind = "rate_limited"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnknown      ErrorKind = "unknown"
)

// Error is a classified upstream failure. It is constructed only at this
// package's boundary; nothing else in the gateway builds one.
type Error struct {
	Kind      ErrorKind
	Operation string
	Message   string
	// Raw carries the upstream payload for diagnostics when available.
	Raw []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s: %s (%s)", e.Operation, e.Message, e.Kind)
}

// Classify maps the upstream's in-band error message onto an ErrorKind by
// substring matching. The matching is inherently fragile against upstream
// wording changes; keeping it in one place means one place to update.
func Classify(message string) ErrorKind {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "invalid api key"):
		return KindUnauthorized
	case strings.Contains(m, "not found"), strings.Contains(m, "no such"):
		return KindNotFound
	case strings.Contains(m, "rate limit"), strings.Contains(m, "quota exceeded"):
		return KindRateLimited
	default:
		return KindBadRequest
	}
}

// newError builds a classified Error for an in-band upstream failure.
func newError(op, message string, raw []byte) *Error {
	return &Error{
		Kind:      Classify(message),
		Operation: op,
		Message:   message,
		Raw:       raw,
	}
}

// IsKind reports whether err is an upstream Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ue *Error
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Kind == kind
}
