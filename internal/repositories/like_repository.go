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

// LikeRepository provides MongoDB-backed persistence for likes.
type LikeRepository struct {
	likes *mongo.Collection
}

// NewLikeRepository constructs a like repository on the given database.
func NewLikeRepository(database *mongo.Database) *LikeRepository {
	return &LikeRepository{likes: database.Collection(db.Likes)}
}

// Toggle flips whether userID likes target and reports the resulting state.
func (r *LikeRepository) Toggle(ctx context.Context, target models.LikeTarget, userID primitive.ObjectID) (bool, error) {
	filter := bson.D{
		{Key: "target.kind", Value: target.Kind},
		{Key: "target.id", Value: target.ID},
		{Key: "likedBy", Value: userID},
	}
	now := timestamp()
	return toggle(ctx, r.likes, "like", filter, models.Like{
		ID:        primitive.NewObjectID(),
		Target:    target,
		LikedBy:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// LikedVideos lists the videos a user liked, newest like first.
func (r *LikeRepository) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error) {
	return collect[models.LikedVideo](ctx, r.likes, "liked videos", aggregate.LikedVideos(userID))
}

// toggle removes the record matching filter if there is one and inserts doc
// otherwise. It reports whether the record exists afterwards. The unique index
// on the filtered fields decides concurrent toggles: when another request
// inserted first, the duplicate key error means the record is present.
func toggle(ctx context.Context, coll *mongo.Collection, name string, filter bson.D, doc any) (bool, error) {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, wrapError("remove "+name, err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, wrapError("insert "+name, err)
	}
	return true, nil
}
