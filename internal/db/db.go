package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by repositories and aggregation lookups.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Likes         = "likes"
	Subscriptions = "subscriptions"
	Playlists     = "playlists"
	Tweets        = "tweets"
)

const connectTimeout = 10 * time.Second

// Connect opens a MongoDB client for the provided URI and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("vidtube"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// Pinger reports whether the primary is reachable.
type Pinger struct {
	Client *mongo.Client
}

// Ping checks the connection to the primary.
func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}
