package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/response"
)

// SubscriptionHandler implements the subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := caller(r)
	if err != nil {
		return err
	}
	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}
	if channelID == user.ID {
		return badRequest("cannot subscribe to your own channel")
	}
	if err := h.userExists(ctx, channelID, "channel does not exist"); err != nil {
		return err
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		return err
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	response.Success(ctx, w, http.StatusOK, subscriptionState{Subscribed: subscribed}, message)
	return nil
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}
	if err := h.userExists(ctx, channelID, "channel does not exist"); err != nil {
		return err
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, subscribers, "subscribers fetched")
	return nil
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		return err
	}
	if err := h.userExists(ctx, subscriberID, "user does not exist"); err != nil {
		return err
	}

	channels, err := h.Subscriptions.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		return err
	}

	response.Success(ctx, w, http.StatusOK, channels, "subscribed channels fetched")
	return nil
}

func (h SubscriptionHandler) userExists(ctx context.Context, id primitive.ObjectID, message string) error {
	ok, err := h.Users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(message)
	}
	return nil
}

type subscriptionState struct {
	Subscribed bool `json:"subscribed"`
}
