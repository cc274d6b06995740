package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"paysync/internal/platform/models"
)

// Sink is where audit entries land. Satisfied by
// repositories.WebhookLogRepository.
type Sink interface {
	Insert(ctx context.Context, entry *models.WebhookLogEntry) error
}

// Logger records every received webhook for debugging. Writes run in a
// goroutine with their own bounded timeout: an audit failure, however slow,
// must never fail or delay the gateway-facing response.
type Logger struct {
	sink    Sink
	timeout time.Duration
}

func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink, timeout: 5 * time.Second}
}

func (l *Logger) Record(event, paymentID string, data map[string]interface{}, processed bool) {
	entry := &models.WebhookLogEntry{
		ID:         "whlog_" + uuid.New().String(),
		Event:      event,
		PaymentID:  paymentID,
		Data:       data,
		Processed:  processed,
		ReceivedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.sink.Insert(ctx, entry); err != nil {
			log.Warn().
				Err(err).
				Str("event", event).
				Str("payment_id", paymentID).
				Msg("webhook audit write failed")
		}
	}()
}
