package repositories

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/aggregate"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// UserRepository provides MongoDB-backed persistence for users and the channel
// views derived from them.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository constructs a user repository on the given database.
func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{users: database.Collection(db.Users)}
}

// Create inserts a new user and fills in its id and timestamps. Username and
// email are stored lower-cased; a duplicate of either yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := timestamp()
	user.ID = primitive.NewObjectID()
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return wrapError("insert user", err)
	}
	return nil
}

// FindByID loads a user without credentials.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, r.users, "find user", bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(publicUser))
}

// FindWithPassword loads a user including the password hash.
func (r *UserRepository) FindWithPassword(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, r.users, "find user credentials", bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(bson.D{{Key: "refreshToken", Value: 0}}))
}

// FindByLogin loads a user, including the password hash, by username or email.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: login}},
		bson.D{{Key: "email", Value: login}},
	}}}
	return findOne[models.User](ctx, r.users, "find user by login", filter,
		options.FindOne().SetProjection(bson.D{{Key: "refreshToken", Value: 0}}))
}

// Exists reports whether a user with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.users.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapError("count users", err)
	}
	return n > 0, nil
}

// Taken reports whether another account already uses the username or email.
func (r *UserRepository) Taken(ctx context.Context, username, email string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: strings.ToLower(strings.TrimSpace(username))}},
		bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}},
	}}}
	n, err := r.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapError("count users", err)
	}
	return n > 0, nil
}

// UpdateAccount changes the display name and email of a user.
func (r *UserRepository) UpdateAccount(ctx context.Context, id primitive.ObjectID, fullname, email string) (models.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullname", Value: strings.TrimSpace(fullname)},
		{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))},
		{Key: "updatedAt", Value: timestamp()},
	}}}
	return updateReturning[models.User](ctx, r.users, "update account", bson.D{{Key: "_id", Value: id}}, update,
		options.FindOneAndUpdate().SetProjection(publicUser))
}

// UpdatePassword stores a new password hash and touches nothing else.
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: timestamp()},
	}}})
	if err != nil {
		return wrapError("update password", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAvatar replaces the avatar and returns the updated user together with
// the asset it replaced.
func (r *UserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error) {
	user, err := r.replaceImage(ctx, id, "avatar", asset)
	if err != nil {
		return models.User{}, models.MediaAsset{}, err
	}
	previous := user.Avatar
	user.Avatar = asset
	return user, previous, nil
}

// UpdateCoverImage replaces the cover image and returns the updated user
// together with the asset it replaced, which is zero when there was none.
func (r *UserRepository) UpdateCoverImage(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error) {
	user, err := r.replaceImage(ctx, id, "coverImage", asset)
	if err != nil {
		return models.User{}, models.MediaAsset{}, err
	}
	previous := user.CoverImage
	user.CoverImage = asset
	return user, previous, nil
}

// replaceImage returns the document as it was before the update so the
// caller can schedule removal of the previous file.
func (r *UserRepository) replaceImage(ctx context.Context, id primitive.ObjectID, field string, asset models.MediaAsset) (models.User, error) {
	now := timestamp()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: field, Value: asset},
		{Key: "updatedAt", Value: now},
	}}}
	user, err := updateReturning[models.User](ctx, r.users, "update "+field, bson.D{{Key: "_id", Value: id}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before).SetProjection(publicUser))
	if err != nil {
		return models.User{}, err
	}
	user.UpdatedAt = now
	return user, nil
}

// AddToWatchHistory moves the video to the end of the user's history,
// removing any earlier occurrence so each video appears once.
func (r *UserRepository) AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	withoutVideo := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", videoID}}}},
	}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$concatArrays", Value: bson.A{withoutVideo, bson.A{videoID}}}}},
		}}},
	}

	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return wrapError("update watch history", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ChannelProfile assembles the public channel page of username as seen by
// viewer, which is nil for anonymous requests.
func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (models.ChannelProfile, error) {
	return collectOne[models.ChannelProfile](ctx, r.users, "channel profile", aggregate.ChannelProfile(username, viewer))
}

// ChannelStats totals the dashboard figures of a channel.
func (r *UserRepository) ChannelStats(ctx context.Context, userID primitive.ObjectID) (models.ChannelStats, error) {
	return collectOne[models.ChannelStats](ctx, r.users, "channel stats", aggregate.ChannelStats(userID))
}

// WatchHistory lists the videos the user watched, most recent first.
func (r *UserRepository) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoDetails, error) {
	return collect[models.VideoDetails](ctx, r.users, "watch history", aggregate.WatchHistory(userID))
}
