package aggregate

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
)

// PublicProfile projects the user fields that may be shown to other users.
func PublicProfile() bson.D {
	return bson.D{
		{Key: "username", Value: 1},
		{Key: "fullname", Value: 1},
		{Key: "avatar", Value: "$avatar.url"},
	}
}

// userLookup joins the user referenced by localField, projected to its public profile.
func userLookup(localField, as string) Lookup {
	return Lookup{
		From:         db.Users,
		LocalField:   localField,
		ForeignField: "_id",
		As:           as,
		Pipeline:     Start().Project(PublicProfile()).Build(),
	}
}

// ownerLookup replaces the owner id with the owner's public profile.
func ownerLookup() Lookup {
	return userLookup("owner", "owner")
}

// likesLookup joins the likes pointing at the current document.
func likesLookup(kind models.LikeKind) Lookup {
	return Lookup{
		From:         db.Likes,
		LocalField:   "_id",
		ForeignField: "target.id",
		As:           "likes",
		Pipeline: Start().
			Match(bson.D{{Key: "target.kind", Value: kind}}).
			Project(bson.D{{Key: "_id", Value: 1}}).
			Build(),
	}
}

// visibleTo keeps videos that are published or owned by viewer. It must run
// before the owner join replaces the owner id.
func visibleTo(viewer primitive.ObjectID) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "isPublished", Value: true}},
		bson.D{{Key: "owner", Value: viewer}},
	}}}
}

// withLikesCount adds likesCount for the given kind and drops the joined likes.
func withLikesCount(p *Pipeline, kind models.LikeKind) *Pipeline {
	return p.Lookup(likesLookup(kind)).
		AddFields(bson.D{{Key: "likesCount", Value: Size("likes")}}).
		Unset("likes")
}

// ChannelProfile runs against users. viewer is nil for anonymous requests, in
// which case isSubscribed is always false.
func ChannelProfile(username string, viewer *primitive.ObjectID) mongo.Pipeline {
	var isSubscribed any = false
	if viewer != nil {
		isSubscribed = bson.D{{Key: "$in", Value: bson.A{*viewer, "$subscribers.subscriber"}}}
	}

	return Start().
		Match(bson.D{{Key: "username", Value: strings.ToLower(strings.TrimSpace(username))}}).
		Limit(1).
		Lookup(Lookup{
			From:         db.Subscriptions,
			LocalField:   "_id",
			ForeignField: "channel",
			As:           "subscribers",
			Pipeline:     Start().Project(bson.D{{Key: "subscriber", Value: 1}}).Build(),
		}).
		Lookup(Lookup{
			From:         db.Subscriptions,
			LocalField:   "_id",
			ForeignField: "subscriber",
			As:           "subscribedTo",
			Pipeline:     Start().Project(bson.D{{Key: "_id", Value: 1}}).Build(),
		}).
		AddFields(bson.D{
			{Key: "subscribersCount", Value: Size("subscribers")},
			{Key: "channelsSubscribedToCount", Value: Size("subscribedTo")},
			{Key: "isSubscribed", Value: isSubscribed},
		}).
		Project(bson.D{
			{Key: "username", Value: 1},
			{Key: "fullname", Value: 1},
			{Key: "email", Value: 1},
			{Key: "avatar", Value: "$avatar.url"},
			{Key: "coverImage", Value: "$coverImage.url"},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
		}).
		Build()
}

// ChannelStats runs against users and totals views, likes, subscribers and
// videos for the given channel.
func ChannelStats(userID primitive.ObjectID) mongo.Pipeline {
	perVideo := withLikesCount(Start(), models.LikeVideo).
		Project(bson.D{{Key: "views", Value: 1}, {Key: "likesCount", Value: 1}}).
		Build()

	return Start().
		Match(bson.D{{Key: "_id", Value: userID}}).
		Lookup(Lookup{
			From:         db.Subscriptions,
			LocalField:   "_id",
			ForeignField: "channel",
			As:           "subscribers",
			Pipeline:     Start().Project(bson.D{{Key: "_id", Value: 1}}).Build(),
		}).
		Lookup(Lookup{
			From:         db.Videos,
			LocalField:   "_id",
			ForeignField: "owner",
			As:           "videos",
			Pipeline:     perVideo,
		}).
		AddFields(bson.D{
			{Key: "subscribersCount", Value: Size("subscribers")},
			{Key: "videosCount", Value: Size("videos")},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$videos.views"}}},
			{Key: "totalLikes", Value: bson.D{{Key: "$sum", Value: "$videos.likesCount"}}},
		}).
		Project(bson.D{
			{Key: "username", Value: 1},
			{Key: "email", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "videosCount", Value: 1},
			{Key: "totalViews", Value: 1},
			{Key: "totalLikes", Value: 1},
		}).
		Build()
}

// ChannelVideos runs against videos and lists everything a channel uploaded,
// newest first, including unpublished videos.
func ChannelVideos(ownerID primitive.ObjectID) mongo.Pipeline {
	p := Start().
		Match(bson.D{{Key: "owner", Value: ownerID}}).
		Sort(bson.D{{Key: "_id", Value: -1}})
	return withLikesCount(p, models.LikeVideo).
		LookupOne(ownerLookup()).
		Build()
}

// VideoByID runs against videos.
func VideoByID(videoID primitive.ObjectID) mongo.Pipeline {
	p := Start().
		Match(bson.D{{Key: "_id", Value: videoID}}).
		Limit(1)
	return withLikesCount(p, models.LikeVideo).
		LookupOne(ownerLookup()).
		Build()
}

// VideoFeed runs against videos and returns one cursor page of matching videos.
func VideoFeed(filter bson.D, page pagination.Request) mongo.Pipeline {
	return Start().
		Match(page.Filter(filter)).
		Stage(page.Stages()...).
		LookupOne(ownerLookup()).
		Build()
}

// WatchHistory runs against users and yields one document per watched video,
// most recent first. The join by id list does not preserve the list order, so
// the joined videos are re-ordered by the stored history and ids of deleted
// videos are dropped, as are other channels' videos that have been unpublished.
func WatchHistory(userID primitive.ObjectID) mongo.Pipeline {
	videoForID := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: "$videos"},
		{Key: "as", Value: "candidate"},
		{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$candidate._id", "$$id"}}}},
	}}}

	ordered := bson.D{{Key: "$reverseArray", Value: bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
			{Key: "as", Value: "id"},
			{Key: "in", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{videoForID, 0}}},
				nil,
			}}}},
		}}}},
		{Key: "as", Value: "v"},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$v", nil}}}},
	}}}}}

	return Start().
		Match(bson.D{{Key: "_id", Value: userID}}).
		Project(bson.D{{Key: "watchHistory", Value: 1}}).
		Lookup(Lookup{
			From:         db.Videos,
			LocalField:   "watchHistory",
			ForeignField: "_id",
			As:           "videos",
			Pipeline:     Start().Match(visibleTo(userID)).LookupOne(ownerLookup()).Build(),
		}).
		Project(bson.D{{Key: "history", Value: ordered}}).
		Unwind("history").
		ReplaceRoot("history").
		Build()
}

// LikedVideos runs against likes and returns the videos a user liked, newest
// like first. Likes whose video has since been deleted, or unpublished by
// another channel, are skipped.
func LikedVideos(userID primitive.ObjectID) mongo.Pipeline {
	return Start().
		Match(bson.D{
			{Key: "likedBy", Value: userID},
			{Key: "target.kind", Value: models.LikeVideo},
		}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		LookupOne(Lookup{
			From:         db.Videos,
			LocalField:   "target.id",
			ForeignField: "_id",
			As:           "video",
			Pipeline:     Start().Match(visibleTo(userID)).LookupOne(ownerLookup()).Build(),
		}).
		Match(bson.D{{Key: "video", Value: bson.D{{Key: "$ne", Value: nil}}}}).
		Project(bson.D{{Key: "createdAt", Value: 1}, {Key: "video", Value: 1}}).
		Build()
}

// VideoComments runs against comments and returns one cursor page for a video.
func VideoComments(videoID primitive.ObjectID, page pagination.Request) mongo.Pipeline {
	return Start().
		Match(page.Filter(bson.D{{Key: "video", Value: videoID}})).
		Stage(page.Stages()...).
		LookupOne(ownerLookup()).
		Build()
}

// UserTweets runs against tweets, newest first.
func UserTweets(ownerID primitive.ObjectID) mongo.Pipeline {
	p := Start().
		Match(bson.D{{Key: "owner", Value: ownerID}}).
		Sort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		LookupOne(ownerLookup())
	return withLikesCount(p, models.LikeTweet).Build()
}

// ChannelSubscribers runs against subscriptions and lists who follows a channel.
func ChannelSubscribers(channelID primitive.ObjectID) mongo.Pipeline {
	return Start().
		Match(bson.D{{Key: "channel", Value: channelID}}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		LookupOne(userLookup("subscriber", "subscriber")).
		Match(bson.D{{Key: "subscriber", Value: bson.D{{Key: "$ne", Value: nil}}}}).
		Project(bson.D{{Key: "subscriber", Value: 1}, {Key: "createdAt", Value: 1}}).
		Build()
}

// SubscribedChannels runs against subscriptions and lists the channels a user follows.
func SubscribedChannels(subscriberID primitive.ObjectID) mongo.Pipeline {
	return Start().
		Match(bson.D{{Key: "subscriber", Value: subscriberID}}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		LookupOne(userLookup("channel", "channel")).
		Match(bson.D{{Key: "channel", Value: bson.D{{Key: "$ne", Value: nil}}}}).
		Project(bson.D{{Key: "channel", Value: 1}, {Key: "createdAt", Value: 1}}).
		Build()
}

// UserPlaylists runs against playlists.
func UserPlaylists(ownerID primitive.ObjectID) mongo.Pipeline {
	return Start().
		Match(bson.D{{Key: "owner", Value: ownerID}}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		LookupOne(ownerLookup()).
		AddFields(bson.D{{Key: "totalVideos", Value: Size("videos")}}).
		Build()
}

// PlaylistByID runs against playlists and also joins the playlist's videos
// that viewer may see.
func PlaylistByID(playlistID, viewer primitive.ObjectID) mongo.Pipeline {
	return Start().
		Match(bson.D{{Key: "_id", Value: playlistID}}).
		Limit(1).
		LookupOne(ownerLookup()).
		AddFields(bson.D{{Key: "totalVideos", Value: Size("videos")}}).
		Lookup(Lookup{
			From:         db.Videos,
			LocalField:   "videos",
			ForeignField: "_id",
			As:           "videoDetails",
			Pipeline:     Start().Match(visibleTo(viewer)).LookupOne(ownerLookup()).Build(),
		}).
		Build()
}
