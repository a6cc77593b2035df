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
	"github.com/vidtube/backend/internal/pagination"
)

// CommentRepository provides MongoDB-backed persistence for comments.
type CommentRepository struct {
	comments *mongo.Collection
	likes    *mongo.Collection
}

// NewCommentRepository constructs a comment repository on the given database.
func NewCommentRepository(database *mongo.Database) *CommentRepository {
	return &CommentRepository{
		comments: database.Collection(db.Comments),
		likes:    database.Collection(db.Likes),
	}
}

// Create inserts a new comment and fills in its id and timestamps.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := timestamp()
	comment.ID = primitive.NewObjectID()
	comment.Content = strings.TrimSpace(comment.Content)
	comment.CreatedAt, comment.UpdatedAt = now, now
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return wrapError("insert comment", err)
	}
	return nil
}

// FindByID loads the stored comment document.
func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	return findOne[models.Comment](ctx, r.comments, "find comment", bson.D{{Key: "_id", Value: id}})
}

// UpdateContent replaces the text of a comment.
func (r *CommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: strings.TrimSpace(content)},
		{Key: "updatedAt", Value: timestamp()},
	}}}
	return updateReturning[models.Comment](ctx, r.comments, "update comment", bson.D{{Key: "_id", Value: id}}, update)
}

// Delete removes a comment and the likes pointing at it.
func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := deleteByID(ctx, r.comments, "delete comment", bson.D{{Key: "_id", Value: id}}); err != nil {
		return err
	}
	if _, err := r.likes.DeleteMany(ctx, bson.D{{Key: "target.kind", Value: models.LikeComment}, {Key: "target.id", Value: id}}); err != nil {
		return wrapError("delete comment likes", err)
	}
	return nil
}

// ListForVideo returns one cursor page of a video's comments in posting order.
func (r *CommentRepository) ListForVideo(ctx context.Context, videoID primitive.ObjectID, page pagination.Request) ([]models.CommentDetails, error) {
	return collect[models.CommentDetails](ctx, r.comments, "video comments", aggregate.VideoComments(videoID, page))
}
