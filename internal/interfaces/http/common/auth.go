package common

import (
	"context"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

type contextKey string

const authUserContextKey contextKey = "authUser"

// AuthenticatedUser represents the JWT-derived principal.
type AuthenticatedUser struct {
	Principal domain.Principal
	Name      string
}

// ContextWithUser stores the authenticated user into context.
func ContextWithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthenticatedUser)
	if !ok || user.Principal == nil {
		return AuthenticatedUser{}, false
	}
	return user, true
}

// PrincipalFromContext returns the caller, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil
	}
	return user.Principal
}
