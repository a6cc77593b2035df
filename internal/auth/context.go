package auth

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// Cookie names carrying the session tokens.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)
