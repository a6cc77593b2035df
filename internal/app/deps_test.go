package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
)

func testClient(t *testing.T) *mongo.Client {
	t.Helper()
	// Connect does not dial; nothing here talks to a server.
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		DatabaseName:   "vidtube_test",
		AuthRateLimit:  5,
		MaxUploadBytes: 1 << 20,
		Tokens: config.TokenConfig{
			AccessSecret:  "a",
			AccessTTL:     time.Minute,
			RefreshSecret: "r",
			RefreshTTL:    time.Hour,
		},
		ObjectStore: config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, cleanup, err := buildDependencies(context.Background(), testClient(t), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cleanup(ctx)
	}()

	if deps.Users == nil || deps.Videos == nil || deps.Comments == nil || deps.Likes == nil {
		t.Fatal("expected repositories to be configured")
	}
	if deps.Subscriptions == nil || deps.Playlists == nil || deps.Tweets == nil {
		t.Fatal("expected social repositories to be configured")
	}
	if deps.Sessions == nil || deps.Tokens == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Uploads.Storage == nil || deps.Uploads.Cleaner == nil || deps.Uploads.MaxBytes != 1<<20 {
		t.Fatalf("unexpected uploader %+v", deps.Uploads)
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter")
	}
	if _, ok := deps.DB.(db.Pinger); !ok {
		t.Fatalf("expected mongo pinger, got %T", deps.DB)
	}
}

func TestBuildDependenciesRequiresBucket(t *testing.T) {
	_, _, err := buildDependencies(context.Background(), testClient(t), config.Config{}, slog.Default())
	if err == nil {
		t.Fatal("expected missing bucket to fail")
	}
}

func TestRetryIndexes(t *testing.T) {
	calls := 0
	create := func(context.Context, *mongo.Database, db.IndexSpec) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, context.DeadlineExceeded
		}
		return []string{"username_unique"}, nil
	}

	names, err := retryIndexes(context.Background(), nil, db.IndexSpec{Collection: db.Users}, create)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || len(names) != 1 {
		t.Fatalf("expected a retry, got %d calls and %v", calls, names)
	}
}

func TestRetryIndexesStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("index options conflict")
	calls := 0
	create := func(context.Context, *mongo.Database, db.IndexSpec) ([]string, error) {
		calls++
		return nil, permanent
	}

	if _, err := retryIndexes(context.Background(), nil, db.IndexSpec{Collection: db.Users}, create); !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retries, got %d calls", calls)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"seed"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestMigrationBackoffIsCapped(t *testing.T) {
	if got := migrationBackoff(1); got != migrationBaseBackoff {
		t.Fatalf("unexpected first backoff %v", got)
	}
	if got := migrationBackoff(20); got != migrationMaxBackoff {
		t.Fatalf("expected cap, got %v", got)
	}
}
