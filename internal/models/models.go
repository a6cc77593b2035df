package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaAsset references a file held in object storage.
type MediaAsset struct {
	URL        string `json:"url" bson:"url"`
	StorageKey string `json:"storageKey" bson:"storageKey"`
}

// IsZero reports whether the asset was never uploaded.
func (m MediaAsset) IsZero() bool {
	return m.URL == "" && m.StorageKey == ""
}

// User represents an account. A user is also a channel other users subscribe to.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Email        string               `json:"email" bson:"email"`
	Fullname     string               `json:"fullname" bson:"fullname"`
	Password     string               `json:"-" bson:"password"`
	Avatar       MediaAsset           `json:"avatar" bson:"avatar"`
	CoverImage   MediaAsset           `json:"coverImage" bson:"coverImage"`
	RefreshToken string               `json:"-" bson:"refreshToken,omitempty"`
	WatchHistory []primitive.ObjectID `json:"watchHistory" bson:"watchHistory"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Video is an uploaded video owned by a channel.
type Video struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VideoFile   MediaAsset         `json:"videoFile" bson:"videoFile"`
	Thumbnail   MediaAsset         `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Comment is a remark left on a video.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Video     primitive.ObjectID `json:"video" bson:"video"`
	Owner     primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Tweet is a short text post on a channel.
type Tweet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Owner     primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Subscription links a subscriber to a channel. Its presence means subscribed.
type Subscription struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `json:"subscriber" bson:"subscriber"`
	Channel    primitive.ObjectID `json:"channel" bson:"channel"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Playlist is an owner-curated set of videos.
type Playlist struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description" bson:"description"`
	Owner       primitive.ObjectID   `json:"owner" bson:"owner"`
	Videos      []primitive.ObjectID `json:"videos" bson:"videos"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
