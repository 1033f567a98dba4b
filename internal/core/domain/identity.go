package domain

import "context"

// Identity is the authenticated caller attached to a request once its bearer
// token has been validated.
type Identity struct {
	User *User
	Role string
}

type identityKey struct{}

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored in ctx. ok is false when
// the request is unauthenticated.
func IdentityFromContext(ctx context.Context) (id *Identity, ok bool) {
	id, ok = ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil || id.User == nil {
		return nil, false
	}
	return id, true
}
