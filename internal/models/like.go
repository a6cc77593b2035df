package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeKind names the entity a like points at.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// LikeTarget is the tagged reference carried by every like: exactly one kind and
// one id, so a like can never point at two entities at once.
type LikeTarget struct {
	Kind LikeKind           `json:"kind" bson:"kind"`
	ID   primitive.ObjectID `json:"id" bson:"id"`
}

// VideoTarget returns the like target for a video.
func VideoTarget(id primitive.ObjectID) LikeTarget { return LikeTarget{Kind: LikeVideo, ID: id} }

// CommentTarget returns the like target for a comment.
func CommentTarget(id primitive.ObjectID) LikeTarget { return LikeTarget{Kind: LikeComment, ID: id} }

// TweetTarget returns the like target for a tweet.
func TweetTarget(id primitive.ObjectID) LikeTarget { return LikeTarget{Kind: LikeTweet, ID: id} }

// Like records that a user liked a target.
type Like struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Target    LikeTarget         `json:"target" bson:"target"`
	LikedBy   primitive.ObjectID `json:"likedBy" bson:"likedBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
