package reconcile

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"paysync/internal/platform/models"
	pkgerrors "paysync/internal/pkg/errors"
)

// fakeStore records calls and serves canned matches.
type fakeStore struct {
	matches []models.OrderMatch

	findErr  error
	patchErr error

	findCalls    int
	appliedTo    []models.OrderMatch
	appliedPatch *models.OrderPatch
	created      []*models.OrderRecord
}

func (s *fakeStore) FindByPaymentID(ctx context.Context, paymentID string) ([]models.OrderMatch, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.matches, nil
}

func (s *fakeStore) ApplyPatch(ctx context.Context, matches []models.OrderMatch, patch models.OrderPatch) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.appliedTo = matches
	s.appliedPatch = &patch
	return nil
}

func (s *fakeStore) Create(ctx context.Context, collection models.OrderCollection, record *models.OrderRecord) error {
	s.created = append(s.created, record)
	return nil
}

func match(col models.OrderCollection) models.OrderMatch {
	return models.OrderMatch{
		Collection: col,
		Record: models.OrderRecord{
			ID:        primitive.NewObjectID(),
			PaymentID: "pay_abc123",
			Status:    models.OrderStatusPending,
		},
	}
}

func captureEvent() *models.WebhookEvent {
	return &models.WebhookEvent{
		Event: models.EventPaymentCaptured,
		Payment: &models.PaymentEntity{
			ID:        "pay_abc123",
			Amount:    29900,
			Currency:  "INR",
			Method:    "upi",
			Fee:       590,
			Tax:       90,
			Email:     "buyer@example.com",
			CreatedAt: 1700000000,
		},
	}
}

func TestProcess_CaptureSingleMatch(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	outcome, err := engine.Process(context.Background(), captureEvent())
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if outcome.Matched != 1 || !outcome.Updated {
		t.Errorf("outcome = %+v, want 1 match updated", outcome)
	}

	patch := store.appliedPatch
	if patch == nil {
		t.Fatal("no patch applied")
	}
	if patch.Status != models.OrderStatusCompleted {
		t.Errorf("Status = %q, want %q", patch.Status, models.OrderStatusCompleted)
	}
	if patch.WebhookData["payment_id"] != "pay_abc123" {
		t.Errorf("webhook_data.payment_id = %v, want pay_abc123", patch.WebhookData["payment_id"])
	}
	if patch.WebhookData["amount"] != 299.0 {
		t.Errorf("amount = %v, want 299 (paise converted to rupees)", patch.WebhookData["amount"])
	}
	if patch.WebhookData["fee"] != 5.9 {
		t.Errorf("fee = %v, want 5.9", patch.WebhookData["fee"])
	}
	if patch.WebhookData["tax"] != 0.9 {
		t.Errorf("tax = %v, want 0.9", patch.WebhookData["tax"])
	}
}

func TestProcess_CaptureUpdatesEveryMatch(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{
		match(models.CollectionShopOrders),
		match(models.CollectionProductPurchases),
	}}
	engine := New(store, false)

	outcome, err := engine.Process(context.Background(), captureEvent())
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if outcome.Matched != 2 {
		t.Errorf("Matched = %d, want 2", outcome.Matched)
	}
	if len(store.appliedTo) != 2 {
		t.Errorf("patch applied to %d documents, want 2", len(store.appliedTo))
	}
}

func TestProcess_CaptureNoMatch(t *testing.T) {
	t.Run("Default Logs Only", func(t *testing.T) {
		store := &fakeStore{}
		engine := New(store, false)

		outcome, err := engine.Process(context.Background(), captureEvent())
		if err != nil {
			t.Fatalf("Process() error: %v", err)
		}
		if outcome.Updated || outcome.Created {
			t.Errorf("outcome = %+v, want no action", outcome)
		}
		if len(store.created) != 0 {
			t.Error("no order should be created without create_on_capture")
		}
	})

	t.Run("Create On Capture", func(t *testing.T) {
		store := &fakeStore{}
		engine := New(store, true)

		outcome, err := engine.Process(context.Background(), captureEvent())
		if err != nil {
			t.Fatalf("Process() error: %v", err)
		}
		if !outcome.Created {
			t.Error("expected order creation")
		}
		if len(store.created) != 1 {
			t.Fatalf("created %d records, want 1", len(store.created))
		}
		rec := store.created[0]
		if rec.PaymentID != "pay_abc123" || rec.Status != models.OrderStatusCompleted {
			t.Errorf("created record = %+v", rec)
		}
		if rec.Amount != 299.0 {
			t.Errorf("Amount = %v, want 299", rec.Amount)
		}
		if rec.WebhookProcessedAt == nil {
			t.Error("WebhookProcessedAt must be set on webhook-created orders")
		}
	})
}

func TestProcess_Failed(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	ev := &models.WebhookEvent{
		Event: models.EventPaymentFailed,
		Payment: &models.PaymentEntity{
			ID:               "pay_abc123",
			Amount:           29900,
			ErrorCode:        "BAD_REQUEST_ERROR",
			ErrorDescription: "Payment declined",
			ErrorSource:      "bank",
			ErrorStep:        "payment_authorization",
			ErrorReason:      "payment_declined",
		},
	}

	if _, err := engine.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	patch := store.appliedPatch
	if patch.Status != models.OrderStatusFailed {
		t.Errorf("Status = %q, want %q", patch.Status, models.OrderStatusFailed)
	}
	for key, want := range map[string]string{
		"error_code":        "BAD_REQUEST_ERROR",
		"error_description": "Payment declined",
		"error_source":      "bank",
		"error_step":        "payment_authorization",
		"error_reason":      "payment_declined",
	} {
		if patch.WebhookData[key] != want {
			t.Errorf("webhook_data[%q] = %v, want %q", key, patch.WebhookData[key], want)
		}
	}
}

func TestProcess_FailedOmittedErrorFields(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	ev := &models.WebhookEvent{
		Event:   models.EventPaymentFailed,
		Payment: &models.PaymentEntity{ID: "pay_abc123", Amount: 29900},
	}

	if _, err := engine.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	for _, key := range []string{"error_code", "error_description", "error_source", "error_step", "error_reason"} {
		if _, ok := store.appliedPatch.WebhookData[key]; !ok {
			t.Errorf("webhook_data[%q] missing; omitted gateway fields should default to empty", key)
		}
	}
}

func TestProcess_Authorized(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	ev := &models.WebhookEvent{
		Event:   models.EventPaymentAuthorized,
		Payment: &models.PaymentEntity{ID: "pay_abc123", Amount: 29900},
	}

	if _, err := engine.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if store.appliedPatch.Status != models.OrderStatusAuthorized {
		t.Errorf("Status = %q, want %q", store.appliedPatch.Status, models.OrderStatusAuthorized)
	}
}

func TestProcess_OrderPaid(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	ev := &models.WebhookEvent{
		Event:   models.EventOrderPaid,
		Payment: &models.PaymentEntity{ID: "pay_abc123"},
		Order: &models.OrderEntity{
			ID:         "order_xyz",
			Amount:     50000,
			AmountPaid: 50000,
			Currency:   "INR",
		},
	}

	if _, err := engine.Process(context.Background(), ev); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if store.findCalls != 1 {
		t.Errorf("findCalls = %d, want 1 lookup by embedded payment id", store.findCalls)
	}

	patch := store.appliedPatch
	if patch.Status != models.OrderStatusCompleted {
		t.Errorf("Status = %q, want %q", patch.Status, models.OrderStatusCompleted)
	}
	if patch.WebhookData["amount"] != 500.0 || patch.WebhookData["amount_paid"] != 500.0 {
		t.Errorf("order amounts not normalized: %+v", patch.WebhookData)
	}
	if patch.WebhookData["order_id"] != "order_xyz" {
		t.Errorf("order_id = %v, want order_xyz", patch.WebhookData["order_id"])
	}
}

func TestProcess_UnknownEventIsNoOp(t *testing.T) {
	store := &fakeStore{}
	engine := New(store, true)

	ev := &models.WebhookEvent{Event: "refund.created"}
	outcome, err := engine.Process(context.Background(), ev)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if outcome.Updated || outcome.Created {
		t.Errorf("outcome = %+v, want no-op", outcome)
	}
	if store.findCalls != 0 {
		t.Error("unknown events must not query the store")
	}
}

func TestProcess_MissingPaymentEntity(t *testing.T) {
	store := &fakeStore{}
	engine := New(store, false)

	for _, event := range []string{
		models.EventPaymentCaptured,
		models.EventPaymentFailed,
		models.EventPaymentAuthorized,
		models.EventOrderPaid,
	} {
		ev := &models.WebhookEvent{Event: event}
		if _, err := engine.Process(context.Background(), ev); err != nil {
			t.Errorf("Process(%s) error: %v", event, err)
		}
	}
	if store.findCalls != 0 {
		t.Error("events without payment entities must not query the store")
	}
}

func TestProcess_PersistenceErrorsPropagate(t *testing.T) {
	storeErr := errors.New("bulk write failed")
	store := &fakeStore{
		matches:  []models.OrderMatch{match(models.CollectionShopOrders)},
		patchErr: storeErr,
	}
	engine := New(store, false)

	_, err := engine.Process(context.Background(), captureEvent())
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want wrapped %v", err, storeErr)
	}
	if kind := pkgerrors.KindOf(err); kind != pkgerrors.KindPersistence {
		t.Errorf("KindOf = %v, want %v", kind, pkgerrors.KindPersistence)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	store := &fakeStore{matches: []models.OrderMatch{match(models.CollectionShopOrders)}}
	engine := New(store, false)

	if _, err := engine.Process(context.Background(), captureEvent()); err != nil {
		t.Fatalf("first Process() error: %v", err)
	}
	first := *store.appliedPatch

	if _, err := engine.Process(context.Background(), captureEvent()); err != nil {
		t.Fatalf("second Process() error: %v", err)
	}
	second := *store.appliedPatch

	if first.Status != second.Status || !reflect.DeepEqual(first.WebhookData, second.WebhookData) {
		t.Errorf("duplicate delivery produced a different patch:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
