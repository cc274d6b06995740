package workers

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (p *fakePruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	return p.deleted, p.err
}

func TestPruneWebhookLogs(t *testing.T) {
	pruner := &fakePruner{deleted: 7}
	ttl := 30 * 24 * time.Hour

	deleted, err := PruneWebhookLogs(context.Background(), pruner, ttl)
	if err != nil {
		t.Fatalf("PruneWebhookLogs() error: %v", err)
	}
	if deleted != 7 {
		t.Errorf("deleted = %d, want 7", deleted)
	}

	want := time.Now().Add(-ttl)
	if diff := pruner.cutoff.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", pruner.cutoff, want)
	}
}

func TestPruneWebhookLogs_Error(t *testing.T) {
	pruner := &fakePruner{err: errors.New("delete failed")}

	if _, err := PruneWebhookLogs(context.Background(), pruner, time.Hour); err == nil {
		t.Error("expected error to propagate")
	}
}
