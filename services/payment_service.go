package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Bishal-code0731/ecom/events"
	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

const paymentCurrency = "usd"

type CreateIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

type IntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentService raises Stripe PaymentIntents for orders and reconciles
// order state against verified gateway events.
type PaymentService struct {
	store     repository.Store
	stripe    StripeAPI
	publisher *events.Publisher
	logger    *zap.Logger
}

func NewPaymentService(store repository.Store, stripeAPI StripeAPI, publisher *events.Publisher, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: store, stripe: stripeAPI, publisher: publisher, logger: logger}
}

// CreateIntent raises a PaymentIntent for an order the caller owns.
// The intent amount is the order total in the smallest currency unit and
// carries the order id in its metadata so webhook events can be matched back.
func (s *PaymentService) CreateIntent(ctx context.Context, actor Actor, orderID uuid.UUID) (*IntentResponse, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID.String()}
		}
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, &UnauthorizedError{Message: "you do not have access to this order"}
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, &ValidationError{Message: "order is already paid"}
	}

	amount := order.Total.Mul(decimal.NewFromInt(100)).IntPart()
	pi, err := s.stripe.CreateIntent(amount, paymentCurrency,
		fmt.Sprintf("Payment for Order #%s", order.OrderNumber),
		map[string]string{
			"order_id": order.ID.String(),
			"user_id":  order.UserID.String(),
		})
	if err != nil {
		return nil, fmt.Errorf("payment intent creation failed: %w", err)
	}

	payment := &models.Payment{
		OrderID:         order.ID,
		UserID:          order.UserID,
		Amount:          amount,
		Currency:        paymentCurrency,
		Status:          "pending",
		StripePaymentID: &pi.ID,
	}
	if err := s.store.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent created",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", pi.ID),
	)
	return &IntentResponse{ClientSecret: pi.ClientSecret, PaymentIntentID: pi.ID}, nil
}

// ConfirmPayment retrieves an intent from Stripe and, if it succeeded,
// reconciles the order the same way a webhook delivery would.
func (s *PaymentService) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*models.Order, error) {
	pi, err := s.stripe.RetrieveIntent(req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	orderID, err := orderIDFromMetadata(pi.Metadata)
	if err != nil {
		return nil, &NotFoundError{Resource: "order", ID: "unknown"}
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &ValidationError{Message: fmt.Sprintf("payment not successful: %s", pi.Status)}
	}

	order, applied, err := s.reconcile(ctx, orderID, pi.ID, true, nil)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Resource: "order", ID: orderID.String()}
	}
	if applied {
		s.publishPaymentEvent(ctx, events.TypePaymentSucceeded, order)
	}
	return order, nil
}

// HandleWebhook verifies the raw event against its signature header and
// applies the payment outcome. Unverifiable payloads are rejected with a
// PaymentVerificationError and cause no state change. Events for unknown
// orders are silently ignored; repeated deliveries of the same outcome are
// no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.stripe.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return &PaymentVerificationError{Err: err}
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return s.handlePaymentIntentEvent(ctx, event, true)
	case "payment_intent.payment_failed":
		return s.handlePaymentIntentEvent(ctx, event, false)
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		return nil
	}
}

// GetPaymentMethods lists the supported payment methods.
func (s *PaymentService) GetPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "stripe", Name: "Credit Card / Apple Pay / Google Pay"},
	}
}

func (s *PaymentService) handlePaymentIntentEvent(ctx context.Context, event stripe.Event, succeeded bool) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return &PaymentVerificationError{Err: err}
	}

	orderID, err := orderIDFromMetadata(pi.Metadata)
	if err != nil {
		// Not our event class; acknowledge without acting.
		s.logger.Warn("Webhook event without usable order_id metadata",
			zap.String("payment_intent_id", pi.ID))
		return nil
	}

	rawPayload := string(event.Data.Raw)
	order, applied, err := s.reconcile(ctx, orderID, pi.ID, succeeded, &rawPayload)
	if err != nil {
		return err
	}
	if order == nil {
		s.logger.Info("Webhook for unknown order ignored", zap.String("order_id", orderID.String()))
		return nil
	}
	if !applied {
		s.logger.Info("Duplicate payment webhook skipped",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_status", order.PaymentStatus.String()),
		)
		return nil
	}

	eventType := events.TypePaymentSucceeded
	if !succeeded {
		eventType = events.TypePaymentFailed
	}
	s.publishPaymentEvent(ctx, eventType, order)
	return nil
}

// reconcile moves the order's (payment_status, status) pair for a payment
// outcome inside one transaction. It returns the order (nil when the order
// id is unknown) and whether any state actually changed. "paid" is sticky:
// a failure outcome against an already-paid order changes nothing.
func (s *PaymentService) reconcile(ctx context.Context, orderID uuid.UUID, intentID string, succeeded bool, rawPayload *string) (*models.Order, bool, error) {
	var order *models.Order
	var applied bool

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		found, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		order = found

		target := models.PaymentStatusFailed
		if succeeded {
			target = models.PaymentStatusPaid
		}
		if order.PaymentStatus == target || !order.PaymentStatus.CanTransitionTo(target) {
			return nil
		}

		order.PaymentStatus = target
		if succeeded && order.Status == models.OrderStatusPending {
			order.Status = models.OrderStatusProcessing
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}
		applied = true

		return s.updatePaymentAudit(ctx, tx, intentID, succeeded, rawPayload)
	})
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}

// updatePaymentAudit stamps the outcome onto the Payment row for the intent,
// when one exists. Intents raised outside this API have no row; that is fine.
func (s *PaymentService) updatePaymentAudit(ctx context.Context, tx repository.Store, intentID string, succeeded bool, rawPayload *string) error {
	payment, err := tx.Payments().FindByStripePaymentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if succeeded {
		updates["status"] = "succeeded"
		updates["succeeded_at"] = &now
	} else {
		updates["status"] = "failed"
		updates["failed_at"] = &now
	}
	if rawPayload != nil {
		updates["stripe_event_payload"] = *rawPayload
	}
	return tx.Payments().UpdateFields(ctx, payment.ID, updates)
}

func (s *PaymentService) publishPaymentEvent(ctx context.Context, eventType string, order *models.Order) {
	s.publisher.Publish(ctx, events.Event{
		Type:        eventType,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.String(),
		Amount:      order.Total.StringFixed(2),
	})
}

func orderIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata["order_id"]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("order_id metadata missing")
	}
	return uuid.Parse(raw)
}
