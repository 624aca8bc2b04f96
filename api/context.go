package api

import (
	"context"

	"github.com/google/uuid"
)

type keyType string

const identityKey keyType = "identity"

// Identity is the authenticated caller attached to the request context by
// the session middleware.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// ctxWithIdentity adds the authenticated identity to the context
func ctxWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFromCtx retrieves the authenticated identity, if any.
func identityFromCtx(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
