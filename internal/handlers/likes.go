package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// LikeHandler implements the like endpoints.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "videoId", models.VideoTarget, func(ctx context.Context, id, viewer primitive.ObjectID) error {
		_, err := visibleVideo(ctx, h.Videos, id, viewer)
		return err
	})
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "commentId", models.CommentTarget, func(ctx context.Context, id, _ primitive.ObjectID) error {
		_, err := h.Comments.FindByID(ctx, id)
		return orNotFound(err, "comment not found")
	})
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "tweetId", models.TweetTarget, func(ctx context.Context, id, _ primitive.ObjectID) error {
		_, err := h.Tweets.FindByID(ctx, id)
		return orNotFound(err, "tweet not found")
	})
}

func (h LikeHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	target func(primitive.ObjectID) models.LikeTarget,
	exists func(ctx context.Context, id, viewer primitive.ObjectID) error,
) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, param)
	if err != nil {
		return err
	}
	if err := exists(ctx, id, user.ID); err != nil {
		return err
	}

	liked, err := h.Likes.Toggle(ctx, target(id), user.ID)
	if err != nil {
		return err
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	response.Success(ctx, w, http.StatusOK, likeState{Liked: liked}, message)
	return nil
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}

	videos, err := h.Likes.LikedVideos(ctx, user.ID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, videos, "liked videos fetched")
	return nil
}

type likeState struct {
	Liked bool `json:"liked"`
}
