package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/db"
)

// MongoSessionStore keeps each user's current refresh token on the user
// document itself, so a user can hold at most one session.
type MongoSessionStore struct {
	users *mongo.Collection
}

// NewMongoSessionStore constructs a session store backed by the users collection.
func NewMongoSessionStore(database *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{users: database.Collection(db.Users)}
}

// Save replaces the stored refresh token of the session's user.
func (s *MongoSessionStore) Save(ctx context.Context, session auth.Session) error {
	id, err := primitive.ObjectIDFromHex(session.Identity.UserID)
	if err != nil {
		return auth.ErrSessionNotFound
	}

	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "refreshToken", Value: session.RefreshToken},
	}}})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

// Find loads the user's current refresh token along with the identity needed
// to mint a new access token.
func (s *MongoSessionStore) Find(ctx context.Context, userID string) (auth.Session, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return auth.Session{}, auth.ErrSessionNotFound
	}

	var doc struct {
		Username     string `bson:"username"`
		Email        string `bson:"email"`
		Fullname     string `bson:"fullname"`
		RefreshToken string `bson:"refreshToken"`
	}
	err = s.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne().SetProjection(bson.D{
		{Key: "username", Value: 1},
		{Key: "email", Value: 1},
		{Key: "fullname", Value: 1},
		{Key: "refreshToken", Value: 1},
	})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, fmt.Errorf("find session: %w", err)
	}
	if doc.RefreshToken == "" {
		return auth.Session{}, auth.ErrSessionNotFound
	}

	return auth.Session{
		Identity: auth.Identity{
			UserID:   userID,
			Email:    doc.Email,
			Username: doc.Username,
			Fullname: doc.Fullname,
		},
		RefreshToken: doc.RefreshToken,
	}, nil
}

// Rotate stores next as the user's refresh token, conditioned on oldToken still
// being the stored one. The filter and the write are a single update, so
// concurrent rotations of the same token cannot both succeed.
func (s *MongoSessionStore) Rotate(ctx context.Context, userID, oldToken string, next auth.Session) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrSessionNotFound
	}

	res, err := s.users.UpdateOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "refreshToken", Value: oldToken},
	}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "refreshToken", Value: next.RefreshToken},
	}}})
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrRefreshTokenReused
	}
	return nil
}

// Delete clears the user's refresh token.
func (s *MongoSessionStore) Delete(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrSessionNotFound
	}

	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$unset", Value: bson.D{
		{Key: "refreshToken", Value: ""},
	}}})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}
