package repositories

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/aggregate"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// TweetRepository provides MongoDB-backed persistence for tweets.
type TweetRepository struct {
	tweets *mongo.Collection
	likes  *mongo.Collection
}

// NewTweetRepository constructs a tweet repository on the given database.
func NewTweetRepository(database *mongo.Database) *TweetRepository {
	return &TweetRepository{
		tweets: database.Collection(db.Tweets),
		likes:  database.Collection(db.Likes),
	}
}

// Create inserts a new tweet and fills in its id and timestamps.
func (r *TweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	now := timestamp()
	tweet.ID = primitive.NewObjectID()
	tweet.Content = strings.TrimSpace(tweet.Content)
	tweet.CreatedAt, tweet.UpdatedAt = now, now
	if _, err := r.tweets.InsertOne(ctx, tweet); err != nil {
		return wrapError("insert tweet", err)
	}
	return nil
}

// FindByID loads the stored tweet document.
func (r *TweetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Tweet, error) {
	return findOne[models.Tweet](ctx, r.tweets, "find tweet", bson.D{{Key: "_id", Value: id}})
}

// UpdateContent replaces the text of a tweet.
func (r *TweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Tweet, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: strings.TrimSpace(content)},
		{Key: "updatedAt", Value: timestamp()},
	}}}
	return updateReturning[models.Tweet](ctx, r.tweets, "update tweet", bson.D{{Key: "_id", Value: id}}, update)
}

// Delete removes a tweet and the likes pointing at it.
func (r *TweetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := deleteByID(ctx, r.tweets, "delete tweet", bson.D{{Key: "_id", Value: id}}); err != nil {
		return err
	}
	if _, err := r.likes.DeleteMany(ctx, bson.D{{Key: "target.kind", Value: models.LikeTweet}, {Key: "target.id", Value: id}}); err != nil {
		return wrapError("delete tweet likes", err)
	}
	return nil
}

// ListForOwner lists a user's tweets, newest first, with like counts.
func (r *TweetRepository) ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.TweetDetails, error) {
	return collect[models.TweetDetails](ctx, r.tweets, "user tweets", aggregate.UserTweets(ownerID))
}
