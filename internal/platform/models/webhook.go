package models

import "time"

// Gateway event types the reconciliation engine acts on. Anything else is
// acknowledged and ignored.
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventPaymentAuthorized = "payment.authorized"
	EventOrderPaid         = "order.paid"
)

// WebhookEvent is the normalized shape of one gateway notification. It is
// built once per request from the verified raw body and never persisted
// directly.
type WebhookEvent struct {
	Event   string
	Payment *PaymentEntity
	Order   *OrderEntity

	// Raw is the decoded body as received, kept only for the audit log.
	Raw map[string]interface{}
}

// PaymentEntity mirrors payload.payment.entity. Amounts are integer minor
// units (paise); the error_* fields are present only on failure events.
type PaymentEntity struct {
	ID               string                 `json:"id"`
	Amount           int64                  `json:"amount"`
	Currency         string                 `json:"currency"`
	Status           string                 `json:"status"`
	Method           string                 `json:"method"`
	Email            string                 `json:"email"`
	Contact          string                 `json:"contact"`
	Fee              int64                  `json:"fee"`
	Tax              int64                  `json:"tax"`
	CreatedAt        int64                  `json:"created_at"`
	Notes            map[string]interface{} `json:"notes"`
	ErrorCode        string                 `json:"error_code"`
	ErrorDescription string                 `json:"error_description"`
	ErrorSource      string                 `json:"error_source"`
	ErrorStep        string                 `json:"error_step"`
	ErrorReason      string                 `json:"error_reason"`
}

// OrderEntity mirrors payload.order.entity.
type OrderEntity struct {
	ID         string                 `json:"id"`
	Amount     int64                  `json:"amount"`
	AmountPaid int64                  `json:"amount_paid"`
	Currency   string                 `json:"currency"`
	Status     string                 `json:"status"`
	Notes      map[string]interface{} `json:"notes"`
}

// WebhookLogEntry is the append-only audit record written for every received
// event. It is diagnostic only: nothing in the reconciliation path reads it.
type WebhookLogEntry struct {
	ID         string                 `bson:"_id" json:"id"`
	Event      string                 `bson:"event" json:"event"`
	PaymentID  string                 `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Data       map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Processed  bool                   `bson:"processed" json:"processed"`
	ReceivedAt time.Time              `bson:"received_at" json:"received_at"`
}
