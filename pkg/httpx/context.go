package httpx

import (
	"context"

	"github.com/matheuspina/avaliatec/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyAuthID ctxKey = "auth_id"
	CtxKeyClaims ctxKey = "claims"
)

// AuthIDFromContext returns the identity provider subject placed by AuthnMiddleware.
func AuthIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyAuthID).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the full verified claims.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

// ContextWithClaims injects verified claims the same way AuthnMiddleware does.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyAuthID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
