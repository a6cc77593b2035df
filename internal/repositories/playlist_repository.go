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

// PlaylistRepository provides MongoDB-backed persistence for playlists.
type PlaylistRepository struct {
	playlists *mongo.Collection
}

// NewPlaylistRepository constructs a playlist repository on the given database.
func NewPlaylistRepository(database *mongo.Database) *PlaylistRepository {
	return &PlaylistRepository{playlists: database.Collection(db.Playlists)}
}

// Create inserts a playlist. Names are unique per owner.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	now := timestamp()
	playlist.ID = primitive.NewObjectID()
	playlist.Name = strings.TrimSpace(playlist.Name)
	playlist.Description = strings.TrimSpace(playlist.Description)
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	if _, err := r.playlists.InsertOne(ctx, playlist); err != nil {
		return wrapError("insert playlist", err)
	}
	return nil
}

// FindByID loads the stored playlist document.
func (r *PlaylistRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error) {
	return findOne[models.Playlist](ctx, r.playlists, "find playlist", bson.D{{Key: "_id", Value: id}})
}

// Details loads a playlist with its owner and the videos viewer may see.
func (r *PlaylistRepository) Details(ctx context.Context, id, viewer primitive.ObjectID) (models.PlaylistDetails, error) {
	return collectOne[models.PlaylistDetails](ctx, r.playlists, "playlist details", aggregate.PlaylistByID(id, viewer))
}

// ListForOwner lists a user's playlists, newest first.
func (r *PlaylistRepository) ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.PlaylistDetails, error) {
	return collect[models.PlaylistDetails](ctx, r.playlists, "user playlists", aggregate.UserPlaylists(ownerID))
}

// Update renames a playlist and replaces its description.
func (r *PlaylistRepository) Update(ctx context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: strings.TrimSpace(name)},
		{Key: "description", Value: strings.TrimSpace(description)},
		{Key: "updatedAt", Value: timestamp()},
	}}}
	return updateReturning[models.Playlist](ctx, r.playlists, "update playlist", bson.D{{Key: "_id", Value: id}}, update)
}

// AddVideo adds a video to the playlist; adding one already present is a no-op.
func (r *PlaylistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: timestamp()}}},
	}
	return updateReturning[models.Playlist](ctx, r.playlists, "add playlist video", bson.D{{Key: "_id", Value: id}}, update)
}

// RemoveVideo removes a video from the playlist.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: timestamp()}}},
	}
	return updateReturning[models.Playlist](ctx, r.playlists, "remove playlist video", bson.D{{Key: "_id", Value: id}}, update)
}

// Delete removes a playlist. The videos in it are untouched.
func (r *PlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.playlists, "delete playlist", bson.D{{Key: "_id", Value: id}})
}
