package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"paysync/internal/platform/models"
)

// OrderRepository is the locator and persistence gateway over the redundant
// order collections. Reads and writes always span the full collection
// enumeration; a batch is atomic per collection only, which is an accepted
// tradeoff of the redundant-storage design.
type OrderRepository struct {
	db *mongo.Database
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByPaymentID returns the union of matches across every order collection.
// Zero matches is a valid result: the storefront may not have written the
// order yet when the gateway notifies.
func (r *OrderRepository) FindByPaymentID(ctx context.Context, paymentID string) ([]models.OrderMatch, error) {
	var matches []models.OrderMatch

	for _, col := range models.OrderCollections() {
		cursor, err := r.db.Collection(string(col)).Find(ctx, bson.M{"payment_id": paymentID})
		if err != nil {
			return nil, err
		}

		var records []models.OrderRecord
		if err := cursor.All(ctx, &records); err != nil {
			return nil, err
		}

		for _, record := range records {
			matches = append(matches, models.OrderMatch{Collection: col, Record: record})
		}
	}

	return matches, nil
}

// ApplyPatch writes the decided status and webhook data to every matched
// document, batched per collection. webhook_data is replaced wholesale, and
// every write stamps webhook_processed_at and last_updated with the current
// server time.
func (r *OrderRepository) ApplyPatch(ctx context.Context, matches []models.OrderMatch, patch models.OrderPatch) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":               patch.Status,
		"webhook_data":         patch.WebhookData,
		"webhook_processed_at": now,
		"last_updated":         now,
	}}

	batches := make(map[models.OrderCollection][]mongo.WriteModel)
	for _, match := range matches {
		model := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": match.Record.ID}).
			SetUpdate(update)
		batches[match.Collection] = append(batches[match.Collection], model)
	}

	for _, col := range models.OrderCollections() {
		writes, ok := batches[col]
		if !ok {
			continue
		}
		if _, err := r.db.Collection(string(col)).BulkWrite(ctx, writes); err != nil {
			return err
		}
	}

	return nil
}

// Create inserts a new order record into the given collection. Used only by
// the create-on-capture path.
func (r *OrderRepository) Create(ctx context.Context, collection models.OrderCollection, record *models.OrderRecord) error {
	_, err := r.db.Collection(string(collection)).InsertOne(ctx, record)
	return err
}
