package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/logging"
)

// publicUser hides credentials whenever a user document leaves the repository
// for anything other than a password check.
var publicUser = bson.D{{Key: "password", Value: 0}, {Key: "refreshToken", Value: 0}}

func timestamp() time.Time {
	// BSON dates carry millisecond precision.
	return time.Now().UTC().Truncate(time.Millisecond)
}

// collect runs a pipeline inside a logging span and decodes every result.
func collect[T any](ctx context.Context, coll *mongo.Collection, name string, pipeline mongo.Pipeline) (items []T, err error) {
	ctx, span := logging.StartSpan(ctx, name)
	defer func() { span.End(err) }()

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	items = make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", name, err)
	}
	return items, nil
}

// collectOne is collect for views that describe a single record.
func collectOne[T any](ctx context.Context, coll *mongo.Collection, name string, pipeline mongo.Pipeline) (T, error) {
	var zero T
	items, err := collect[T](ctx, coll, name, pipeline)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, ErrNotFound
	}
	return items[0], nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, op string, filter bson.D, opts ...*options.FindOneOptions) (T, error) {
	var out T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		return out, wrapError(op, err)
	}
	return out, nil
}

// updateReturning applies update and returns the document as it looks afterwards.
func updateReturning[T any](ctx context.Context, coll *mongo.Collection, op string, filter bson.D, update any, opts ...*options.FindOneAndUpdateOptions) (T, error) {
	var out T
	o := append([]*options.FindOneAndUpdateOptions{options.FindOneAndUpdate().SetReturnDocument(options.After)}, opts...)
	if err := coll.FindOneAndUpdate(ctx, filter, update, o...).Decode(&out); err != nil {
		return out, wrapError(op, err)
	}
	return out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, op string, filter bson.D) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return wrapError(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
