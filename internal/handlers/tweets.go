package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets TweetStore
	Users  UserStore
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
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

	tweet := models.Tweet{Content: req.Content, Owner: user.ID}
	if err := h.Tweets.Create(ctx, &tweet); err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusCreated, tweet, "tweet created")
	return nil
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) error {
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

	tweets, err := h.Tweets.ListForOwner(ctx, userID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, tweets, "tweets fetched")
	return nil
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	tweet, err := h.owned(r)
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

	updated, err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content)
	if err != nil {
		return orNotFound(err, "tweet not found")
	}

	response.Success(ctx, w, http.StatusOK, updated, "tweet updated")
	return nil
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	tweet, err := h.owned(r)
	if err != nil {
		return err
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		return orNotFound(err, "tweet not found")
	}

	response.Success(ctx, w, http.StatusOK, struct{}{}, "tweet deleted")
	return nil
}

func (h TweetHandler) owned(r *http.Request) (models.Tweet, error) {
	user, err := caller(r)
	if err != nil {
		return models.Tweet{}, err
	}
	id, err := pathID(r, "tweetId")
	if err != nil {
		return models.Tweet{}, err
	}
	tweet, err := h.Tweets.FindByID(r.Context(), id)
	if err != nil {
		return models.Tweet{}, orNotFound(err, "tweet not found")
	}
	if tweet.Owner != user.ID {
		return models.Tweet{}, forbidden("only the author can modify this tweet")
	}
	return tweet, nil
}
