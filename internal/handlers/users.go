package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// UserHandler implements the account and channel endpoints.
type UserHandler struct {
	Users   UserStore
	Uploads Uploader
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, err := caller(r)
	if err != nil {
		return err
	}
	response.Success(r.Context(), w, http.StatusOK, user, "current user fetched")
	return nil
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	current, err := caller(r)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.Fullname, req.Email) {
		return badRequest("fullname and email are required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return badRequest("invalid email address")
	}

	user, err := h.Users.UpdateAccount(ctx, current.ID, strings.TrimSpace(req.Fullname), email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("email is already in use")
		}
		return orNotFound(err, "user does not exist")
	}

	response.Success(ctx, w, http.StatusOK, user, "account details updated")
	return nil
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "avatar", folderAvatars, h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "coverImage", folderCovers, h.Users.UpdateCoverImage)
}

type imageUpdater func(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error)

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field, folder string, update imageUpdater) error {
	ctx := r.Context()
	current, err := caller(r)
	if err != nil {
		return err
	}

	if err := h.Uploads.parseForm(w, r); err != nil {
		return err
	}
	asset, err := h.Uploads.required(ctx, r, field, "image", folder)
	if err != nil {
		return err
	}

	user, previous, err := update(ctx, current.ID, asset)
	if err != nil {
		h.Uploads.discard(ctx, asset)
		return orNotFound(err, "user does not exist")
	}
	h.Uploads.discard(ctx, previous)

	response.Success(ctx, w, http.StatusOK, user, field+" updated")
	return nil
}

// ChannelProfile handles GET /api/v1/users/c/{username}. Authentication is
// optional; anonymous viewers are never subscribed.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		return badRequest("username is missing")
	}

	var viewer *primitive.ObjectID
	if user, ok := auth.UserFromContext(ctx); ok {
		viewer = &user.ID
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewer)
	if err != nil {
		return orNotFound(err, "channel does not exist")
	}

	response.Success(ctx, w, http.StatusOK, profile, "channel fetched")
	return nil
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	history, err := h.Users.WatchHistory(ctx, user.ID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, history, "watch history fetched")
	return nil
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}
