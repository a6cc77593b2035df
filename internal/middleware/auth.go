package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// TokenAuthenticator validates access tokens.
type TokenAuthenticator interface {
	Authenticate(accessToken string) (*auth.AccessClaims, error)
}

// UserLoader loads the account an access token was issued to.
type UserLoader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Authenticator resolves the caller of a request from its access token.
type Authenticator struct {
	Tokens TokenAuthenticator
	Users  UserLoader
}

// Require rejects requests without a valid access token and stores the
// caller on the request context.
func (a Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := AccessToken(r)
		if token == "" {
			response.Error(ctx, w, http.StatusUnauthorized, "unauthorized request")
			return
		}

		user, err := a.resolve(ctx, token)
		switch {
		case err == nil:
		case auth.IsUnauthorized(err), errors.Is(err, repositories.ErrNotFound):
			response.Error(ctx, w, http.StatusUnauthorized, "invalid access token")
			return
		default:
			logging.FromContext(ctx).Error("resolve authenticated user", "error", err)
			response.Error(ctx, w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(ctx, user)))
	})
}

// Optional stores the caller when a valid access token is present and lets
// the request through anonymously otherwise.
func (a Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if token := AccessToken(r); token != "" {
			user, err := a.resolve(ctx, token)
			if err == nil {
				ctx = withCaller(ctx, user)
			} else {
				logging.FromContext(ctx).Debug("ignoring unusable access token", "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a Authenticator) resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := a.Tokens.Authenticate(token)
	if err != nil {
		return models.User{}, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return models.User{}, auth.ErrInvalidToken
	}
	return a.Users.FindByID(ctx, id)
}

func withCaller(ctx context.Context, user models.User) context.Context {
	ctx = auth.WithUser(ctx, user)
	return logging.With(ctx, "user_id", user.ID.Hex())
}

// AccessToken extracts the access token from the cookie or, failing that,
// from a bearer Authorization header.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(auth.AccessCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
