package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/response"
)

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
}

// List handles GET /api/v1/comments/{videoId}?limit=&lastId=.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	if _, err := visibleVideo(ctx, h.Videos, videoID, user.ID); err != nil {
		return err
	}

	q := r.URL.Query()
	comments, err := h.Comments.ListForVideo(ctx, videoID, pagination.Parse(q.Get("limit"), q.Get("lastId")))
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, commentPage{
		Comments:   comments,
		NextCursor: pagination.NextCursor(comments, func(c models.CommentDetails) primitive.ObjectID { return c.ID }),
	}, "comments fetched")
	return nil
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.Content) {
		return badRequest("content is required")
	}

	if _, err := visibleVideo(ctx, h.Videos, videoID, user.ID); err != nil {
		return err
	}

	comment := models.Comment{Content: req.Content, Video: videoID, Owner: user.ID}
	if err := h.Comments.Create(ctx, &comment); err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusCreated, comment, "comment added")
	return nil
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	comment, err := h.owned(r)
	if err != nil {
		return err
	}

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if blank(req.Content) {
		return badRequest("content is required")
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, req.Content)
	if err != nil {
		return orNotFound(err, "comment not found")
	}

	response.Success(ctx, w, http.StatusOK, updated, "comment updated")
	return nil
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	comment, err := h.owned(r)
	if err != nil {
		return err
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		return orNotFound(err, "comment not found")
	}

	response.Success(ctx, w, http.StatusOK, struct{}{}, "comment deleted")
	return nil
}

func (h CommentHandler) owned(r *http.Request) (models.Comment, error) {
	user, err := caller(r)
	if err != nil {
		return models.Comment{}, err
	}
	id, err := pathID(r, "commentId")
	if err != nil {
		return models.Comment{}, err
	}
	comment, err := h.Comments.FindByID(r.Context(), id)
	if err != nil {
		return models.Comment{}, orNotFound(err, "comment not found")
	}
	if comment.Owner != user.ID {
		return models.Comment{}, forbidden("only the author can modify this comment")
	}
	return comment, nil
}

type contentRequest struct {
	Content string `json:"content"`
}

type commentPage struct {
	Comments   []models.CommentDetails `json:"comments"`
	NextCursor *primitive.ObjectID     `json:"nextCursor"`
}
