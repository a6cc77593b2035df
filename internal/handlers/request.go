package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

const maxJSONBody = 1 << 20

// pathID parses the named URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, badRequest("invalid " + name)
	}
	return id, nil
}

// caller returns the authenticated user. Routes behind the auth middleware
// always have one.
func caller(r *http.Request) (models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return models.User{}, unauthorized("unauthorized request")
	}
	return user, nil
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return newAPIError(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return badRequest("invalid request body")
	}
	return nil
}

// blank reports whether any of the values is empty after trimming.
func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
