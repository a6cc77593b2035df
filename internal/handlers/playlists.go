package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.Name) {
		return badRequest("name is required")
	}

	playlist := models.Playlist{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Owner:       user.ID,
	}
	if err := h.Playlists.Create(ctx, &playlist); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("a playlist with this name already exists")
		}
		return err
	}

	response.Success(ctx, w, http.StatusCreated, playlist, "playlist created")
	return nil
}

// Get handles GET /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}

	playlist, err := h.Playlists.Details(ctx, id, user.ID)
	if err != nil {
		return orNotFound(err, "playlist not found")
	}

	response.Success(ctx, w, http.StatusOK, playlist, "playlist fetched")
	return nil
}

// ListForUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	userID, err := pathID(r, "userId")
	if err != nil {
		return err
	}
	ok, err := h.Users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("user not found")
	}

	playlists, err := h.Playlists.ListForOwner(ctx, userID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, playlists, "playlists fetched")
	return nil
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	playlist, err := h.owned(r)
	if err != nil {
		return err
	}

	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.Name, req.Description) {
		return badRequest("name and description are required")
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("a playlist with this name already exists")
		}
		return orNotFound(err, "playlist not found")
	}

	response.Success(ctx, w, http.StatusOK, updated, "playlist updated")
	return nil
}

// Delete handles DELETE /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	playlist, err := h.owned(r)
	if err != nil {
		return err
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		return orNotFound(err, "playlist not found")
	}

	response.Success(ctx, w, http.StatusOK, struct{}{}, "playlist deleted")
	return nil
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	playlist, err := h.owned(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	if _, err := visibleVideo(ctx, h.Videos, videoID, playlist.Owner); err != nil {
		return err
	}

	updated, err := h.Playlists.AddVideo(ctx, playlist.ID, videoID)
	if err != nil {
		return orNotFound(err, "playlist not found")
	}

	response.Success(ctx, w, http.StatusOK, updated, "video added to playlist")
	return nil
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
// Removing a video that is not in the playlist is not an error.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	playlist, err := h.owned(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	updated, err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID)
	if err != nil {
		return orNotFound(err, "playlist not found")
	}

	response.Success(ctx, w, http.StatusOK, updated, "video removed from playlist")
	return nil
}

func (h PlaylistHandler) owned(r *http.Request) (models.Playlist, error) {
	user, err := caller(r)
	if err != nil {
		return models.Playlist{}, err
	}
	id, err := pathID(r, "playlistId")
	if err != nil {
		return models.Playlist{}, err
	}
	playlist, err := h.Playlists.FindByID(r.Context(), id)
	if err != nil {
		return models.Playlist{}, orNotFound(err, "playlist not found")
	}
	if playlist.Owner != user.ID {
		return models.Playlist{}, forbidden("only the owner can modify this playlist")
	}
	return playlist, nil
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
