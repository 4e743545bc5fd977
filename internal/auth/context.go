package auth

import (
	"context"

	"usermgmt/internal/models"
)

type identityKey struct{}

// Identity is the request-scoped authentication context: the caller's stored
// record plus the validated token claims it was resolved from.
type Identity struct {
	User   models.User
	Claims *Claims
}

// WithIdentity returns a context carrying the resolved caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the identity placed by the authentication middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
