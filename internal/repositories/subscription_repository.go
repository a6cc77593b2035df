package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/aggregate"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// SubscriptionRepository provides MongoDB-backed persistence for subscriptions.
type SubscriptionRepository struct {
	subscriptions *mongo.Collection
}

// NewSubscriptionRepository constructs a subscription repository on the given database.
func NewSubscriptionRepository(database *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{subscriptions: database.Collection(db.Subscriptions)}
}

// Toggle flips whether subscriber follows channel and reports the resulting state.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	filter := bson.D{
		{Key: "subscriber", Value: subscriber},
		{Key: "channel", Value: channel},
	}
	now := timestamp()
	return toggle(ctx, r.subscriptions, "subscription", filter, models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// Subscribers lists the users following a channel.
func (r *SubscriptionRepository) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.Subscriber, error) {
	return collect[models.Subscriber](ctx, r.subscriptions, "channel subscribers", aggregate.ChannelSubscribers(channel))
}

// SubscribedChannels lists the channels a user follows.
func (r *SubscriptionRepository) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error) {
	return collect[models.SubscribedChannel](ctx, r.subscriptions, "subscribed channels", aggregate.SubscribedChannels(subscriber))
}
