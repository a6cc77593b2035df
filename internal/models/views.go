package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicProfile is the subset of a user that may be embedded in other views.
type PublicProfile struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Fullname string             `json:"fullname" bson:"fullname"`
	Avatar   string             `json:"avatar" bson:"avatar"`
}

// ChannelProfile is a user's public channel page.
type ChannelProfile struct {
	ID                        primitive.ObjectID `json:"id" bson:"_id"`
	Username                  string             `json:"username" bson:"username"`
	Fullname                  string             `json:"fullname" bson:"fullname"`
	Email                     string             `json:"email" bson:"email"`
	Avatar                    string             `json:"avatar" bson:"avatar"`
	CoverImage                string             `json:"coverImage" bson:"coverImage"`
	SubscribersCount          int64              `json:"subscribersCount" bson:"subscribersCount"`
	ChannelsSubscribedToCount int64              `json:"channelsSubscribedToCount" bson:"channelsSubscribedToCount"`
	IsSubscribed              bool               `json:"isSubscribed" bson:"isSubscribed"`
}

// ChannelStats summarises a channel for its owner's dashboard.
type ChannelStats struct {
	ID               primitive.ObjectID `json:"id" bson:"_id"`
	Username         string             `json:"username" bson:"username"`
	Email            string             `json:"email" bson:"email"`
	SubscribersCount int64              `json:"subscribersCount" bson:"subscribersCount"`
	VideosCount      int64              `json:"videosCount" bson:"videosCount"`
	TotalViews       int64              `json:"totalViews" bson:"totalViews"`
	TotalLikes       int64              `json:"totalLikes" bson:"totalLikes"`
}

// VideoDetails is a video with its owner joined in.
type VideoDetails struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	VideoFile   MediaAsset         `json:"videoFile" bson:"videoFile"`
	Thumbnail   MediaAsset         `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	LikesCount  int64              `json:"likesCount" bson:"likesCount"`
	Owner       *PublicProfile     `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LikedVideo is one entry of a user's liked-videos list.
type LikedVideo struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	LikedAt time.Time          `json:"likedAt" bson:"createdAt"`
	Video   *VideoDetails      `json:"video" bson:"video"`
}

// CommentDetails is a comment with its author joined in.
type CommentDetails struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Content   string             `json:"content" bson:"content"`
	Video     primitive.ObjectID `json:"video" bson:"video"`
	Owner     *PublicProfile     `json:"owner" bson:"owner"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TweetDetails is a tweet with its author and like count joined in.
type TweetDetails struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Content    string             `json:"content" bson:"content"`
	Owner      *PublicProfile     `json:"owner" bson:"owner"`
	LikesCount int64              `json:"likesCount" bson:"likesCount"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Subscriber is one entry of a channel's subscriber list.
type Subscriber struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Subscriber   *PublicProfile     `json:"subscriber" bson:"subscriber"`
	SubscribedAt time.Time          `json:"subscribedAt" bson:"createdAt"`
}

// SubscribedChannel is one entry of the channels a user follows.
type SubscribedChannel struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Channel      *PublicProfile     `json:"channel" bson:"channel"`
	SubscribedAt time.Time          `json:"subscribedAt" bson:"createdAt"`
}

// PlaylistDetails is a playlist with its owner joined in. Videos is only
// populated when a single playlist is fetched.
type PlaylistDetails struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Owner       *PublicProfile     `json:"owner" bson:"owner"`
	TotalVideos int64              `json:"totalVideos" bson:"totalVideos"`
	Videos      []VideoDetails     `json:"videos,omitempty" bson:"videoDetails,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
