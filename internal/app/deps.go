package app

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

const (
	authLimiterBurst = 5
	authLimiterTTL   = 10 * time.Minute
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the media cleaner.
func buildDependencies(ctx context.Context, client *mongo.Client, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	objectStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}
	cleaner := media.NewCleaner(objectStore, media.CleanerConfig{}, logger)

	database := client.Database(cfg.DatabaseName)
	users := repositories.NewUserRepository(database)
	sessions := auth.NewManager(auth.NewSigner(cfg.Tokens), repositories.NewMongoSessionStore(database))

	var authLimiter middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		authLimiter = middleware.NewIPRateLimiter(cfg.AuthRateLimit, time.Minute, authLimiterBurst, authLimiterTTL)
	}

	deps := handlers.Dependencies{
		Logger:        logger,
		Users:         users,
		Sessions:      sessions,
		Tokens:        sessions,
		Videos:        repositories.NewVideoRepository(database),
		Comments:      repositories.NewCommentRepository(database),
		Likes:         repositories.NewLikeRepository(database),
		Subscriptions: repositories.NewSubscriptionRepository(database),
		Playlists:     repositories.NewPlaylistRepository(database),
		Tweets:        repositories.NewTweetRepository(database),
		Uploads: handlers.Uploader{
			Storage:  objectStore,
			Cleaner:  cleaner,
			MaxBytes: cfg.MaxUploadBytes,
		},
		DB:           db.Pinger{Client: client},
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.CookieSecure,
		TrustProxy:   cfg.TrustProxy,
		AuthLimiter:  authLimiter,
		RateLimit:    cfg.RateLimit,
	}

	return deps, cleaner.Close, nil
}
