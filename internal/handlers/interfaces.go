package handlers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindWithPassword(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Taken(ctx context.Context, username, email string) (bool, error)
	UpdateAccount(ctx context.Context, id primitive.ObjectID, fullname, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error)
	UpdateCoverImage(ctx context.Context, id primitive.ObjectID, asset models.MediaAsset) (models.User, models.MediaAsset, error)
	AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (models.ChannelProfile, error)
	ChannelStats(ctx context.Context, userID primitive.ObjectID) (models.ChannelStats, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoDetails, error)
}

// SessionManager issues, rotates and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, id auth.Identity) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// VideoStore captures persistence for videos.
type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	Details(ctx context.Context, id primitive.ObjectID) (models.VideoDetails, error)
	Feed(ctx context.Context, filter repositories.VideoFilter, page pagination.Request) ([]models.VideoDetails, error)
	ChannelVideos(ctx context.Context, ownerID primitive.ObjectID) ([]models.VideoDetails, error)
	Update(ctx context.Context, id primitive.ObjectID, update repositories.VideoUpdate) (models.Video, error)
	TogglePublish(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListForVideo(ctx context.Context, videoID primitive.ObjectID, page pagination.Request) ([]models.CommentDetails, error)
}

// LikeStore captures persistence for likes.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, userID primitive.ObjectID) (bool, error)
	LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error)
}

// SubscriptionStore captures persistence for subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.Subscriber, error)
	SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error)
	Details(ctx context.Context, id, viewer primitive.ObjectID) (models.PlaylistDetails, error)
	ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.PlaylistDetails, error)
	Update(ctx context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error)
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.TweetDetails, error)
}

// MediaStorage persists uploaded files.
type MediaStorage interface {
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (models.MediaAsset, error)
}

// MediaCleaner schedules removal of stored files that are no longer referenced.
type MediaCleaner interface {
	Enqueue(ctx context.Context, keys ...string) error
}

// Pinger checks connectivity to the database.
type Pinger interface {
	Ping(ctx context.Context) error
}
