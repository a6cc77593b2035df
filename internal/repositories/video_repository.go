package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/aggregate"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
)

// VideoFilter narrows the video feed. Only published videos are listed.
type VideoFilter struct {
	OwnerID *primitive.ObjectID
	Query   string
}

// VideoUpdate carries the editable fields of a video. A nil Thumbnail keeps
// the current one.
type VideoUpdate struct {
	Title       string
	Description string
	Thumbnail   *models.MediaAsset
}

// VideoRepository provides MongoDB-backed persistence for videos.
type VideoRepository struct {
	videos   *mongo.Collection
	comments *mongo.Collection
	likes    *mongo.Collection
}

// NewVideoRepository constructs a video repository on the given database.
func NewVideoRepository(database *mongo.Database) *VideoRepository {
	return &VideoRepository{
		videos:   database.Collection(db.Videos),
		comments: database.Collection(db.Comments),
		likes:    database.Collection(db.Likes),
	}
}

// Create inserts a new video and fills in its id and timestamps.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	now := timestamp()
	video.ID = primitive.NewObjectID()
	video.CreatedAt, video.UpdatedAt = now, now
	if _, err := r.videos.InsertOne(ctx, video); err != nil {
		return wrapError("insert video", err)
	}
	return nil
}

// FindByID loads the stored video document.
func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	return findOne[models.Video](ctx, r.videos, "find video", bson.D{{Key: "_id", Value: id}})
}

// Details loads a video with its owner and like count.
func (r *VideoRepository) Details(ctx context.Context, id primitive.ObjectID) (models.VideoDetails, error) {
	return collectOne[models.VideoDetails](ctx, r.videos, "video details", aggregate.VideoByID(id))
}

// Feed returns one cursor page of published videos.
func (r *VideoRepository) Feed(ctx context.Context, filter VideoFilter, page pagination.Request) ([]models.VideoDetails, error) {
	match := bson.D{{Key: "isPublished", Value: true}}
	if filter.OwnerID != nil {
		match = append(match, bson.E{Key: "owner", Value: *filter.OwnerID})
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		match = append(match, bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}})
	}
	return collect[models.VideoDetails](ctx, r.videos, "video feed", aggregate.VideoFeed(match, page))
}

// ChannelVideos lists every video a channel uploaded, newest first.
func (r *VideoRepository) ChannelVideos(ctx context.Context, ownerID primitive.ObjectID) ([]models.VideoDetails, error) {
	return collect[models.VideoDetails](ctx, r.videos, "channel videos", aggregate.ChannelVideos(ownerID))
}

// Update applies the editable fields and returns the updated video.
func (r *VideoRepository) Update(ctx context.Context, id primitive.ObjectID, update VideoUpdate) (models.Video, error) {
	set := bson.D{
		{Key: "title", Value: strings.TrimSpace(update.Title)},
		{Key: "description", Value: strings.TrimSpace(update.Description)},
		{Key: "updatedAt", Value: timestamp()},
	}
	if update.Thumbnail != nil {
		set = append(set, bson.E{Key: "thumbnail", Value: *update.Thumbnail})
	}
	return updateReturning[models.Video](ctx, r.videos, "update video", bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}})
}

// TogglePublish flips isPublished in a single write and returns the result.
func (r *VideoRepository) TogglePublish(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isPublished", Value: bson.D{{Key: "$not", Value: bson.A{"$isPublished"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	return updateReturning[models.Video](ctx, r.videos, "toggle publish", bson.D{{Key: "_id", Value: id}}, update)
}

// IncrementViews adds one view to the stored counter.
func (r *VideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.videos.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
	if err != nil {
		return wrapError("increment views", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a video, then its comments, the likes on those comments and
// the likes on the video. Once the video itself is gone every dependent
// removal is still attempted; failures among them are reported wrapped in
// ErrCascadeIncomplete.
func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := deleteByID(ctx, r.videos, "delete video", bson.D{{Key: "_id", Value: id}}); err != nil {
		return err
	}

	var errs []error
	commentIDs, err := r.comments.Distinct(ctx, "_id", bson.D{{Key: "video", Value: id}})
	if err != nil {
		errs = append(errs, wrapError("list video comments", err))
	} else if len(commentIDs) > 0 {
		if _, err := r.likes.DeleteMany(ctx, bson.D{
			{Key: "target.kind", Value: models.LikeComment},
			{Key: "target.id", Value: bson.D{{Key: "$in", Value: commentIDs}}},
		}); err != nil {
			errs = append(errs, wrapError("delete comment likes", err))
		}
	}
	if _, err := r.comments.DeleteMany(ctx, bson.D{{Key: "video", Value: id}}); err != nil {
		errs = append(errs, wrapError("delete video comments", err))
	}
	if _, err := r.likes.DeleteMany(ctx, bson.D{{Key: "target.kind", Value: models.LikeVideo}, {Key: "target.id", Value: id}}); err != nil {
		errs = append(errs, wrapError("delete video likes", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCascadeIncomplete, errors.Join(errs...))
	}
	return nil
}
