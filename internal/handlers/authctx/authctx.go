package authctx

import (
	"context"

	"github.com/vkotlyarov/skillboard/internal/service/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// New returns a context carrying the verified identity
func New(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity put there by the auth middleware
func FromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
