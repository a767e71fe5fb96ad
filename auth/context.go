package auth

import (
	"context"
	"firechat/domain"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	tokenKey     contextKey = "token"
)

// WithPrincipal injects the authenticated identity and its raw token for downstream layers.
func WithPrincipal(ctx context.Context, principal domain.Principal, token string) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	return context.WithValue(ctx, tokenKey, token)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}
