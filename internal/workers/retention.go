package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// LogPruner is the slice of the log repository the sweep needs.
type LogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneWebhookLogs deletes audit entries older than ttl. Order records are
// never touched; only the diagnostic webhook_logs collection is swept.
func PruneWebhookLogs(ctx context.Context, pruner LogPruner, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)

	deleted, err := pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("pruned webhook audit logs")
	}
	return deleted, nil
}
