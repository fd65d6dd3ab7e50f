// Package tenant carries the per-request actor scope and pins it onto every
// database transaction so row-level security policies can enforce isolation.
package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
)

// Scope identifies the authenticated actor for a request. ClientID and
// ProviderID are filled once the subject is resolved against the profile
// tables; at most one of them is set.
type Scope struct {
	Subject    string
	Role       enums.ActorRole
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
}

type ctxKey struct{}

// WithScope attaches the scope to the context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// FromContext returns the scope stored on the context, if any.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(Scope)
	return scope, ok
}

// RequireScope returns the scope or an unauthorized error when missing.
func RequireScope(ctx context.Context) (Scope, error) {
	scope, ok := FromContext(ctx)
	if !ok || scope.Subject == "" {
		return Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor scope missing")
	}
	return scope, nil
}

// IsClient reports whether the scope belongs to a resolved client profile.
func (s Scope) IsClient() bool {
	return s.Role == enums.ActorRoleClient && s.ClientID != nil
}

// IsProvider reports whether the scope belongs to a resolved provider profile.
func (s Scope) IsProvider() bool {
	return s.Role == enums.ActorRoleProvider && s.ProviderID != nil
}

// RequireClient returns the client id or a forbidden error.
func (s Scope) RequireClient() (uuid.UUID, error) {
	if !s.IsClient() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "client profile required")
	}
	return *s.ClientID, nil
}

// RequireProvider returns the provider id or a forbidden error.
func (s Scope) RequireProvider() (uuid.UUID, error) {
	if !s.IsProvider() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "provider profile required")
	}
	return *s.ProviderID, nil
}
