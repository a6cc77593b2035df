package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// VideoHandler implements the video endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Uploads Uploader
}

// List handles GET /api/v1/videos: a cursor page of published videos,
// optionally narrowed to one channel or a title search.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	q := r.URL.Query()

	filter := repositories.VideoFilter{Query: q.Get("query")}
	if raw := strings.TrimSpace(q.Get("userId")); raw != "" {
		owner, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return badRequest("invalid userId")
		}
		filter.OwnerID = &owner
	}

	req := pagination.Parse(q.Get("limit"), q.Get("lastId"))
	videos, err := h.Videos.Feed(ctx, filter, req)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, videoPage{
		Videos:     videos,
		NextCursor: pagination.NextCursor(videos, func(v models.VideoDetails) primitive.ObjectID { return v.ID }),
	}, "videos fetched")
	return nil
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	if err := h.Uploads.parseForm(w, r); err != nil {
		return err
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if blank(title, description) {
		return badRequest("title and description are required")
	}
	duration, err := parseDuration(r.FormValue("duration"))
	if err != nil {
		return err
	}

	videoFile, err := h.Uploads.required(ctx, r, "videoFile", "video", folderVideos)
	if err != nil {
		return err
	}
	thumbnail, err := h.Uploads.required(ctx, r, "thumbnail", "image", folderThumbnails)
	if err != nil {
		h.Uploads.discard(ctx, videoFile)
		return err
	}

	video := models.Video{
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Title:       title,
		Description: description,
		Duration:    duration,
		IsPublished: true,
		Owner:       user.ID,
	}
	if err := h.Videos.Create(ctx, &video); err != nil {
		h.Uploads.discard(ctx, videoFile, thumbnail)
		return err
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID.Hex())
	response.Success(ctx, w, http.StatusCreated, video, "video published")
	return nil
}

// Get handles GET /api/v1/videos/{videoId}. Watching counts a view and moves
// the video to the end of the viewer's history. Unpublished videos are only
// visible to their owner.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	if _, err := visibleVideo(ctx, h.Videos, id, user.ID); err != nil {
		return err
	}

	if err := h.Videos.IncrementViews(ctx, id); err != nil {
		return orNotFound(err, "video not found")
	}
	if err := h.Users.AddToWatchHistory(ctx, user.ID, id); err != nil {
		return err
	}

	details, err := h.Videos.Details(ctx, id)
	if err != nil {
		return orNotFound(err, "video not found")
	}

	response.Success(ctx, w, http.StatusOK, details, "video fetched")
	return nil
}

// Update handles PATCH /api/v1/videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	video, err := h.owned(r)
	if err != nil {
		return err
	}

	if err := h.Uploads.parseForm(w, r); err != nil {
		return err
	}
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if blank(title, description) {
		return badRequest("title and description are required")
	}

	update := repositories.VideoUpdate{Title: title, Description: description}
	thumbnail, err := h.Uploads.optional(ctx, r, "thumbnail", "image", folderThumbnails)
	if err != nil {
		return err
	}
	if !thumbnail.IsZero() {
		update.Thumbnail = &thumbnail
	}

	updated, err := h.Videos.Update(ctx, video.ID, update)
	if err != nil {
		h.Uploads.discard(ctx, thumbnail)
		return orNotFound(err, "video not found")
	}
	if update.Thumbnail != nil {
		h.Uploads.discard(ctx, video.Thumbnail)
	}

	response.Success(ctx, w, http.StatusOK, updated, "video updated")
	return nil
}

// Delete handles DELETE /api/v1/videos/{videoId}. The stored files are
// removed in the background once the record is gone, even when some of its
// comments or likes could not be cleared.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	video, err := h.owned(r)
	if err != nil {
		return err
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		if !errors.Is(err, repositories.ErrCascadeIncomplete) {
			return orNotFound(err, "video not found")
		}
		logging.FromContext(ctx).Error("video deleted with leftover records", "videoId", video.ID.Hex(), "error", err)
	}
	h.Uploads.discard(ctx, video.VideoFile, video.Thumbnail)

	response.Success(ctx, w, http.StatusOK, struct{}{}, "video deleted")
	return nil
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	video, err := h.owned(r)
	if err != nil {
		return err
	}

	updated, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		return orNotFound(err, "video not found")
	}

	response.Success(ctx, w, http.StatusOK, publishState{IsPublished: updated.IsPublished}, "publish status toggled")
	return nil
}

// owned loads the video named in the path and checks the caller owns it.
func (h VideoHandler) owned(r *http.Request) (models.Video, error) {
	user, err := caller(r)
	if err != nil {
		return models.Video{}, err
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}
	video, err := h.Videos.FindByID(r.Context(), id)
	if err != nil {
		return models.Video{}, orNotFound(err, "video not found")
	}
	if video.Owner != user.ID {
		return models.Video{}, forbidden("only the owner can modify this video")
	}
	return video, nil
}

func parseDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d < 0 {
		return 0, badRequest("duration must be a non-negative number of seconds")
	}
	return d, nil
}

type videoPage struct {
	Videos     []models.VideoDetails `json:"videos"`
	NextCursor *primitive.ObjectID   `json:"nextCursor"`
}

type publishState struct {
	IsPublished bool `json:"isPublished"`
}

// visibleVideo loads a video that viewer may see. Unpublished videos are
// reported as missing to everyone but their owner.
func visibleVideo(ctx context.Context, videos VideoStore, id, viewer primitive.ObjectID) (models.Video, error) {
	video, err := videos.FindByID(ctx, id)
	if err != nil {
		return models.Video{}, orNotFound(err, "video not found")
	}
	if !video.IsPublished && video.Owner != viewer {
		return models.Video{}, notFound("video not found")
	}
	return video, nil
}
