package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool, retrying with exponential backoff until the database
// answers or ctx is done. Compose starts the service alongside Postgres, so
// the first attempts usually fail.
func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for attempt := 1; ; attempt++ {
		pool, err := NewPool(ctx, databaseURL)
		if err == nil {
			return pool, nil
		}
		logger.Warn("database not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}
