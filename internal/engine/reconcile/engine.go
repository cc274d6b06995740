package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"paysync/internal/platform/models"
	pkgerrors "paysync/internal/pkg/errors"
)

// OrderStore is the slice of the persistence layer the engine needs. The
// production implementation is repositories.OrderRepository.
type OrderStore interface {
	FindByPaymentID(ctx context.Context, paymentID string) ([]models.OrderMatch, error)
	ApplyPatch(ctx context.Context, matches []models.OrderMatch, patch models.OrderPatch) error
	Create(ctx context.Context, collection models.OrderCollection, record *models.OrderRecord) error
}

// Outcome summarizes what one event did to the store.
type Outcome struct {
	Matched int  `json:"matched"`
	Updated bool `json:"updated"`
	Created bool `json:"created"`
}

type Engine struct {
	store           OrderStore
	createOnCapture bool
}

func New(store OrderStore, createOnCapture bool) *Engine {
	return &Engine{store: store, createOnCapture: createOnCapture}
}

// Process applies one verified event to order state. Unknown event types are
// a no-op; a missing order is a valid outcome, not an error. Store failures
// propagate to the caller so the endpoint returns 5xx and the gateway retries.
//
// Status is last-write-wins: a stale redelivery can overwrite a newer status.
func (e *Engine) Process(ctx context.Context, ev *models.WebhookEvent) (*Outcome, error) {
	switch ev.Event {
	case models.EventPaymentCaptured:
		return e.processPayment(ctx, ev.Payment, models.OrderStatusCompleted, captureData)
	case models.EventPaymentFailed:
		return e.processPayment(ctx, ev.Payment, models.OrderStatusFailed, failureData)
	case models.EventPaymentAuthorized:
		return e.processPayment(ctx, ev.Payment, models.OrderStatusAuthorized, authorizationData)
	case models.EventOrderPaid:
		return e.processOrderPaid(ctx, ev)
	default:
		log.Debug().Str("event", ev.Event).Msg("ignoring unhandled webhook event")
		return &Outcome{}, nil
	}
}

func (e *Engine) processPayment(ctx context.Context, p *models.PaymentEntity, status string, data func(*models.PaymentEntity) map[string]interface{}) (*Outcome, error) {
	if p == nil || p.ID == "" {
		log.Warn().Str("status", status).Msg("payment event without payment entity")
		return &Outcome{}, nil
	}

	matches, err := e.store.FindByPaymentID(ctx, p.ID)
	if err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindPersistence, err)
	}

	if len(matches) == 0 {
		if status == models.OrderStatusCompleted && e.createOnCapture {
			return e.createFromCapture(ctx, p)
		}
		log.Info().
			Str("payment_id", p.ID).
			Str("status", status).
			Msg("no matching order for payment event")
		return &Outcome{}, nil
	}

	patch := models.OrderPatch{Status: status, WebhookData: data(p)}
	if err := e.store.ApplyPatch(ctx, matches, patch); err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindPersistence, err)
	}

	log.Info().
		Str("payment_id", p.ID).
		Str("status", status).
		Int("matched", len(matches)).
		Msg("order reconciled")
	return &Outcome{Matched: len(matches), Updated: true}, nil
}

// processOrderPaid resolves by the payment id embedded in the event, not the
// gateway order id: order documents are keyed by payment id in this store.
func (e *Engine) processOrderPaid(ctx context.Context, ev *models.WebhookEvent) (*Outcome, error) {
	if ev.Payment == nil || ev.Payment.ID == "" {
		log.Warn().Msg("order.paid event without embedded payment entity")
		return &Outcome{}, nil
	}

	matches, err := e.store.FindByPaymentID(ctx, ev.Payment.ID)
	if err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindPersistence, err)
	}
	if len(matches) == 0 {
		log.Info().Str("payment_id", ev.Payment.ID).Msg("no matching order for order.paid event")
		return &Outcome{}, nil
	}

	patch := models.OrderPatch{
		Status:      models.OrderStatusCompleted,
		WebhookData: orderPaidData(ev),
	}
	if err := e.store.ApplyPatch(ctx, matches, patch); err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindPersistence, err)
	}

	log.Info().
		Str("payment_id", ev.Payment.ID).
		Int("matched", len(matches)).
		Msg("order marked paid")
	return &Outcome{Matched: len(matches), Updated: true}, nil
}

// createFromCapture covers the race where the gateway's capture notification
// beats the storefront's own order write. Enabled by config; off by default so
// the common deployment only logs the miss.
func (e *Engine) createFromCapture(ctx context.Context, p *models.PaymentEntity) (*Outcome, error) {
	now := time.Now()
	record := &models.OrderRecord{
		PaymentID:          p.ID,
		Status:             models.OrderStatusCompleted,
		Amount:             toMajorUnits(p.Amount),
		Currency:           p.Currency,
		Email:              p.Email,
		Contact:            p.Contact,
		WebhookProcessedAt: &now,
		LastUpdated:        now,
		WebhookData:        captureData(p),
		CreatedAt:          now,
	}

	if err := e.store.Create(ctx, models.CollectionShopOrders, record); err != nil {
		return nil, pkgerrors.WithKind(pkgerrors.KindPersistence, err)
	}

	log.Info().Str("payment_id", p.ID).Msg("order created from capture event")
	return &Outcome{Created: true, Updated: true}, nil
}

// toMajorUnits converts gateway integer minor units (paise) to major currency
// units (rupees).
func toMajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

func captureData(p *models.PaymentEntity) map[string]interface{} {
	return map[string]interface{}{
		"payment_id":  p.ID,
		"amount":      toMajorUnits(p.Amount),
		"currency":    p.Currency,
		"method":      p.Method,
		"fee":         toMajorUnits(p.Fee),
		"tax":         toMajorUnits(p.Tax),
		"email":       p.Email,
		"contact":     p.Contact,
		"notes":       p.Notes,
		"captured_at": time.Unix(p.CreatedAt, 0).UTC(),
	}
}

func failureData(p *models.PaymentEntity) map[string]interface{} {
	return map[string]interface{}{
		"payment_id":        p.ID,
		"amount":            toMajorUnits(p.Amount),
		"currency":          p.Currency,
		"method":            p.Method,
		"error_code":        p.ErrorCode,
		"error_description": p.ErrorDescription,
		"error_source":      p.ErrorSource,
		"error_step":        p.ErrorStep,
		"error_reason":      p.ErrorReason,
		"failed_at":         time.Unix(p.CreatedAt, 0).UTC(),
	}
}

func authorizationData(p *models.PaymentEntity) map[string]interface{} {
	return map[string]interface{}{
		"payment_id":    p.ID,
		"amount":        toMajorUnits(p.Amount),
		"currency":      p.Currency,
		"method":        p.Method,
		"email":         p.Email,
		"contact":       p.Contact,
		"authorized_at": time.Unix(p.CreatedAt, 0).UTC(),
	}
}

func orderPaidData(ev *models.WebhookEvent) map[string]interface{} {
	data := map[string]interface{}{
		"payment_id": ev.Payment.ID,
	}
	if o := ev.Order; o != nil {
		data["order_id"] = o.ID
		data["amount"] = toMajorUnits(o.Amount)
		data["amount_paid"] = toMajorUnits(o.AmountPaid)
		data["currency"] = o.Currency
	}
	return data
}
