package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"paysync/internal/platform/models"
)

const webhookLogCollection = "webhook_logs"

// WebhookLogRepository stores the append-only audit trail of received events.
// Entries are write-once; nothing updates them after insert.
type WebhookLogRepository struct {
	db *mongo.Database
}

func NewWebhookLogRepository(db *mongo.Database) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

func (r *WebhookLogRepository) Insert(ctx context.Context, entry *models.WebhookLogEntry) error {
	_, err := r.db.Collection(webhookLogCollection).InsertOne(ctx, entry)
	return err
}

// LogFilter narrows a listing; zero values mean no constraint.
type LogFilter struct {
	Event     string
	PaymentID string
	Limit     int64
}

// List returns matching entries, newest first. Limit defaults to 100.
func (r *WebhookLogRepository) List(ctx context.Context, filter LogFilter) ([]models.WebhookLogEntry, error) {
	query := bson.M{}
	if filter.Event != "" {
		query["event"] = filter.Event
	}
	if filter.PaymentID != "" {
		query["payment_id"] = filter.PaymentID
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.M{"received_at": -1}).
		SetLimit(limit)

	cursor, err := r.db.Collection(webhookLogCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var entries []models.WebhookLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes entries received before cutoff and reports how many
// were deleted. Used by the retention worker only.
func (r *WebhookLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Collection(webhookLogCollection).DeleteMany(ctx, bson.M{
		"received_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
