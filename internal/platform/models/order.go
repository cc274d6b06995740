package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderCollection identifies one of the redundant order stores. The storefront
// writes each purchase to both, so reconciliation has to treat the set as a
// closed enumeration rather than a runtime list of collection names.
type OrderCollection string

const (
	CollectionShopOrders       OrderCollection = "orders"
	CollectionProductPurchases OrderCollection = "product_purchases"
)

// OrderCollections returns every collection the locator searches, in a fixed
// order.
func OrderCollections() []OrderCollection {
	return []OrderCollection{CollectionShopOrders, CollectionProductPurchases}
}

const (
	OrderStatusPending    = "Pending"
	OrderStatusAuthorized = "Authorized"
	OrderStatusCompleted  = "Completed"
	OrderStatusFailed     = "Failed"
)

// OrderRecord is a purchase document as stored by the storefront. payment_id
// is the correlation key to gateway webhooks and is not unique in storage:
// the same purchase may exist in more than one collection.
type OrderRecord struct {
	ID                 primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	PaymentID          string                 `bson:"payment_id" json:"payment_id"`
	Status             string                 `bson:"status" json:"status"`
	Amount             float64                `bson:"amount,omitempty" json:"amount,omitempty"`
	Currency           string                 `bson:"currency,omitempty" json:"currency,omitempty"`
	Email              string                 `bson:"email,omitempty" json:"email,omitempty"`
	Contact            string                 `bson:"contact,omitempty" json:"contact,omitempty"`
	WebhookProcessedAt *time.Time             `bson:"webhook_processed_at,omitempty" json:"webhook_processed_at,omitempty"`
	LastUpdated        time.Time              `bson:"last_updated,omitempty" json:"last_updated,omitempty"`
	WebhookData        map[string]interface{} `bson:"webhook_data,omitempty" json:"webhook_data,omitempty"`
	CreatedAt          time.Time              `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// OrderMatch is one located document together with the collection it came
// from, so a patch can be routed back to the right collection.
type OrderMatch struct {
	Collection OrderCollection `json:"collection"`
	Record     OrderRecord     `json:"record"`
}

// OrderPatch is the decided outcome of reconciling one event. WebhookData
// replaces the stored copy wholesale; the persistence layer adds the
// webhook_processed_at and last_updated timestamps.
type OrderPatch struct {
	Status      string
	WebhookData map[string]interface{}
}
