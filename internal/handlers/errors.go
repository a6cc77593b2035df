package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// apiError is an error with the status and client-facing message it maps to.
// cause, when set, is logged but never sent to the client.
type apiError struct {
	status  int
	message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.cause }

func newAPIError(status int, message string) *apiError {
	return &apiError{status: status, message: message}
}

func badRequest(message string) error   { return newAPIError(http.StatusBadRequest, message) }
func unauthorized(message string) error { return newAPIError(http.StatusUnauthorized, message) }
func forbidden(message string) error    { return newAPIError(http.StatusForbidden, message) }
func notFound(message string) error     { return newAPIError(http.StatusNotFound, message) }
func conflict(message string) error     { return newAPIError(http.StatusConflict, message) }

// orNotFound gives a repository ErrNotFound a specific message and passes
// every other error through.
func orNotFound(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &apiError{status: http.StatusNotFound, message: message, cause: err}
	}
	return err
}

// respondError is the single place errors become HTTP responses.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.cause != nil {
			logger.Debug("request error cause", "error", apiErr.cause)
		}
		response.Error(ctx, w, apiErr.status, apiErr.message)
	case errors.Is(err, repositories.ErrNotFound):
		response.Error(ctx, w, http.StatusNotFound, "resource not found")
	case errors.Is(err, repositories.ErrConflict):
		response.Error(ctx, w, http.StatusConflict, "resource already exists")
	case auth.IsUnauthorized(err):
		response.Error(ctx, w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, context.Canceled):
		logger.Info("request cancelled", "error", err)
	default:
		logger.Error("unhandled request error", "error", err)
		response.Error(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}

// handlerFunc is an http.HandlerFunc that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (fn handlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		respondError(r.Context(), w, err)
	}
}
