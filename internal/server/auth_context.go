package server

import (
	"context"

	"taskdesk/internal/store"
)

type authContextKey struct{}

type authRequiredContextKey struct{}

type authPrincipal struct {
	User *store.UserRecord
}

func contextWithAuthPrincipal(ctx context.Context, principal authPrincipal) context.Context {
	return context.WithValue(ctx, authContextKey{}, principal)
}

func authPrincipalFromContext(ctx context.Context) (authPrincipal, bool) {
	if ctx == nil {
		return authPrincipal{}, false
	}
	principal, ok := ctx.Value(authContextKey{}).(authPrincipal)
	return principal, ok && principal.User != nil
}

func contextWithAuthRequired(ctx context.Context, required bool) context.Context {
	return context.WithValue(ctx, authRequiredContextKey{}, required)
}

func authRequiredFromContext(ctx context.Context) (bool, bool) {
	if ctx == nil {
		return false, false
	}
	required, ok := ctx.Value(authRequiredContextKey{}).(bool)
	return required, ok
}
