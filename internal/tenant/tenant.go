// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package tenant carries the tenant-scoping context every operation in the
// recommendation core flows through. No row is read or written without a
// Context attached to a request.
package tenant

import (
	"context"
	"fmt"
)

// DefaultTenantID is the tenant every request resolves to when
// multi-tenancy is disabled and the caller supplied no tenant id.
const DefaultTenantID = "default"

// Context is the small value every request carries identifying which
// tenant's rows it may read or mutate.
type Context struct {
	ID string
}

// Error reports a missing or invalid tenant on a multi-tenant deployment.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tenant error: %s", e.Reason)
}

// Resolve derives a Context from a caller-supplied tenant id header. When
// multiTenancyEnabled is false, an empty id falls back to DefaultTenantID.
// When it is true, an empty id is rejected with an *Error; any non-empty id
// is accepted as is (this package only enforces presence, not registration).
func Resolve(rawID string, multiTenancyEnabled bool) (Context, error) {
	if rawID == "" {
		if multiTenancyEnabled {
			return Context{}, &Error{Reason: "missing X-Tenant-Id"}
		}
		return Context{ID: DefaultTenantID}, nil
	}
	return Context{ID: rawID}, nil
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying tc, retrievable via FromContext.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the tenant Context stored by WithContext. ok is
// false if no tenant context was ever attached — callers on a hot path
// should treat that as a programmer error, not a recoverable condition.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// Own reports whether id belongs to tc, the check every row access performs
// before returning or mutating a row (§3's tenant-isolation invariant).
func (tc Context) Own(id string) bool {
	return tc.ID == id
}
