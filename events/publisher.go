package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event types emitted by the API.
const (
	TypeOrderCreated     = "order.created"
	TypePaymentSucceeded = "payment.succeeded"
	TypePaymentFailed    = "payment.failed"
)

// Event is the envelope published to every configured sink.
type Event struct {
	Type        string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	UserID      string    `json:"user_id"`
	Amount      string    `json:"amount,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sink delivers a serialized event to one transport.
type Sink interface {
	Publish(ctx context.Context, message []byte) error
}

// Publisher fans an event out to all configured sinks. Delivery is
// best-effort: sink failures are logged and never fail the request path.
type Publisher struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger, sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks, logger: logger}
}

// Publish serializes the event and hands it to every sink. Safe to call on
// a nil publisher or with zero sinks.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || len(p.sinks) == 0 {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", event.Type), zap.Error(err))
		return
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, payload); err != nil {
			p.logger.Warn("Event publish failed",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			continue
		}
	}
	p.logger.Info("Event published",
		zap.String("event_type", event.Type),
		zap.String("order_id", event.OrderID),
	)
}
