package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/logging"
)

// Run bootstraps the VidTube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or migrate")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("disconnect mongo", "error", err)
		}
	}()

	deps, cleanup, err := buildDependencies(ctx, client, cfg, logger)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, handlers.NewRouter(deps), httpserver.Timeouts{})

	logger.Info("starting http server", "port", cfg.AppPort, "database", cfg.DatabaseName)

	serveErr := httpserver.Serve(ctx, srv, logger)

	// Requests are finished; let queued media deletions complete.
	drainCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()
	if err := cleanup(drainCtx); err != nil {
		logger.Error("drain media cleaner", "error", err)
	}

	return serveErr
}

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

// runMigrations creates every index the service depends on.
func runMigrations(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	database := client.Database(cfg.DatabaseName)
	for _, spec := range db.Indexes() {
		names, err := ensureIndexesWithRetry(ctx, database, spec)
		if err != nil {
			return err
		}
		fmt.Printf("ensured indexes on %s: %v\n", spec.Collection, names)
	}
	return nil
}

type indexCreator func(ctx context.Context, database *mongo.Database, spec db.IndexSpec) ([]string, error)

func ensureIndexesWithRetry(ctx context.Context, database *mongo.Database, spec db.IndexSpec) ([]string, error) {
	return retryIndexes(ctx, database, spec, db.EnsureIndexes)
}

func retryIndexes(ctx context.Context, database *mongo.Database, spec db.IndexSpec, create indexCreator) ([]string, error) {
	var attempt int
	for attempt = 0; attempt < migrationMaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(migrationBackoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		names, err := create(ctx, database, spec)
		if err == nil {
			return names, nil
		}
		if shouldRetryMigration(err) && attempt < migrationMaxRetries-1 {
			fmt.Printf("transient error creating indexes on %s (attempt %d/%d): %v\n", spec.Collection, attempt+1, migrationMaxRetries, err)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("create indexes on %s: exceeded max retries (%d)", spec.Collection, attempt)
}

func migrationBackoff(attempt int) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * migrationBaseBackoff
	if backoff > migrationMaxBackoff {
		backoff = migrationMaxBackoff
	}
	return backoff
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
