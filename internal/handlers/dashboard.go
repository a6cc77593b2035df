package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/response"
)

// DashboardHandler serves a channel owner's own statistics.
type DashboardHandler struct {
	Users  UserStore
	Videos VideoStore
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	stats, err := h.Users.ChannelStats(ctx, user.ID)
	if err != nil {
		return orNotFound(err, "channel not found")
	}

	response.Success(ctx, w, http.StatusOK, stats, "channel stats fetched")
	return nil
}

// ListVideos handles GET /api/v1/dashboard/videos. Unpublished videos are included.
func (h DashboardHandler) ListVideos(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	videos, err := h.Videos.ChannelVideos(ctx, user.ID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, videos, "channel videos fetched")
	return nil
}
