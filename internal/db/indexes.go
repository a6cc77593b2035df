package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec describes the indexes a collection must carry.
type IndexSpec struct {
	Collection string
	Models     []mongo.IndexModel
}

// Indexes lists every index the service relies on. The unique indexes back the
// conflict detection in registration and playlist creation, and make like and
// subscription toggles resolve concurrent duplicates deterministically.
func Indexes() []IndexSpec {
	return []IndexSpec{
		{Collection: Users, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		}},
		{Collection: Videos, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("owner_id")},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("published_id")},
		}},
		{Collection: Comments, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("video_cursor")},
		}},
		{Collection: Likes, Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "target.kind", Value: 1}, {Key: "target.id", Value: 1}, {Key: "likedBy", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("target_liker_unique"),
			},
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "target.kind", Value: 1}}, Options: options.Index().SetName("liker_kind")},
		}},
		{Collection: Subscriptions, Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("subscriber_channel_unique"),
			},
			{Keys: bson.D{{Key: "channel", Value: 1}}, Options: options.Index().SetName("channel")},
		}},
		{Collection: Playlists, Models: []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("owner_name_unique"),
			},
		}},
		{Collection: Tweets, Models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("owner_created")},
		}},
	}
}

// EnsureIndexes creates the given collection's indexes. Creating an index that
// already exists with the same definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, database *mongo.Database, spec IndexSpec) ([]string, error) {
	names, err := database.Collection(spec.Collection).Indexes().CreateMany(ctx, spec.Models)
	if err != nil {
		return nil, fmt.Errorf("create indexes on %s: %w", spec.Collection, err)
	}
	return names, nil
}
