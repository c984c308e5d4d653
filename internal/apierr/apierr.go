// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package apierr is the recommendation core's single error taxonomy (§7).
// Every operation that can fail in a way the external HTTP layer needs to
// render returns (or wraps) an *Error from this package, so the client-facing
// shape is identical no matter which subsystem produced it.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds enumerated in §7's taxonomy table.
type Kind string

const (
	KindInvalidRequest   Kind = "InvalidRequest"
	KindEntityNotFound   Kind = "EntityNotFound"
	KindTenantError      Kind = "TenantError"
	KindInvalidAttribute Kind = "InvalidAttribute"
	KindStorageError     Kind = "StorageError"
	KindTimeout          Kind = "Timeout"
	KindRateLimited      Kind = "RateLimited"
	KindInternalError    Kind = "InternalError"
)

// Status returns the HTTP status code §7 assigns to k.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest, KindTenantError, KindInvalidAttribute:
		return http.StatusBadRequest
	case KindEntityNotFound:
		return http.StatusNotFound
	case KindStorageError, KindInternalError:
		return http.StatusInternalServerError
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the sanitized, client-facing error every core operation produces.
// Message is safe to return verbatim to a client; the wrapped cause (if any)
// is for internal logs only and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that carries cause for internal logging while
// keeping message as the only client-visible text.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As. The cause is
// never put in ToResponse(); Error() includes it for internal logs.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the machine-readable error_code field of the response body.
func (e *Error) Code() string {
	return string(e.Kind)
}

// Response is the stable {error_code, message} shape every error-carrying
// response body uses, regardless of originating subsystem.
type Response struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// ToResponse converts e to its client-facing wire shape.
func (e *Error) ToResponse() Response {
	return Response{ErrorCode: e.Code(), Message: e.Message}
}

// As extracts an *Error from err via errors.As, returning (nil, false) if
// err does not wrap one — used by callers deciding how to log/propagate an
// error that may have originated several layers down.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
