package webhooks

import (
	"encoding/json"

	"paysync/internal/platform/models"
	pkgerrors "paysync/internal/pkg/errors"
)

// envelope is the gateway's wire layout: the interesting entities sit two
// levels down under payload.<kind>.entity.
type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity *models.PaymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity *models.OrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseEvent decodes a verified body into the normalized event shape. Unknown
// event types and absent nested entities are fine; only invalid JSON is an
// error. The error is tagged KindMalformed so operators can tell a bad payload
// from a failed store write.
func ParseEvent(body []byte) (*models.WebhookEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindMalformed, err)
	}

	ev := &models.WebhookEvent{Event: env.Event}
	if env.Payload.Payment != nil {
		ev.Payment = env.Payload.Payment.Entity
	}
	if env.Payload.Order != nil {
		ev.Order = env.Payload.Order.Entity
	}

	// Keep the decoded body for the audit trail. Non-object bodies such as
	// `"ok"` or `42` decode into the envelope but not into a map; those just
	// get a nil Raw.
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err == nil {
		ev.Raw = raw
	}

	return ev, nil
}

// PaymentID returns the correlation key for an event: the gateway payment id
// when a payment entity is present. order.paid events carry both entities and
// are resolved by payment id as well, since orders are keyed by payment id in
// the store.
func PaymentID(ev *models.WebhookEvent) string {
	if ev.Payment != nil {
		return ev.Payment.ID
	}
	return ""
}
