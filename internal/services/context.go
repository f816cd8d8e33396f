package services

import (
	"context"

	"github.com/google/uuid"
)

type principalCtxKey struct{}

// Principal is the authenticated identity attached to a request context.
// Role is the claim cached in the access token; privileged mutations re-check
// the user row instead of trusting it.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}
