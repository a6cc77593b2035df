package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times a named unit of work, such as one aggregation query, and logs its
// duration when it ends.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a child span from the provided context. The returned context
// carries a logger tagged with the span identifiers.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	spanID := uuid.NewString()
	logger := FromContext(ctx).With(
		slog.String("span_id", spanID),
		slog.String("span_name", name),
	)
	if parent := spanIDFromContext(ctx); parent != "" {
		logger = logger.With(slog.String("parent_span_id", parent))
	}

	ctx = WithLogger(ctx, logger)
	ctx = withSpanID(ctx, spanID)

	return ctx, &Span{name: name, logger: logger, start: time.Now()}
}

// End emits a debug entry with the span duration. A non-nil error is logged at
// warn level instead.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	elapsed := time.Since(s.start)
	if err != nil {
		s.logger.Warn("span failed", slog.Duration("duration", elapsed), slog.Any("error", err))
		return
	}
	s.logger.Debug("span completed", slog.Duration("duration", elapsed))
}
