package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/events"
	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/services"
)

// --- Fake Stripe gateway ---

type fakeStripe struct {
	intents      map[string]*stripe.PaymentIntent
	verifyErr    error
	createCalls  int
	nextIntentID string
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{intents: make(map[string]*stripe.PaymentIntent)}
}

func (f *fakeStripe) CreateIntent(amount int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	f.createCalls++
	id := f.nextIntentID
	if id == "" {
		id = fmt.Sprintf("pi_%d", f.createCalls)
	}
	pi := &stripe.PaymentIntent{
		ID:           id,
		Amount:       amount,
		Currency:     stripe.Currency(currency),
		Description:  description,
		Metadata:     metadata,
		ClientSecret: id + "_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}
	f.intents[id] = pi
	return pi, nil
}

func (f *fakeStripe) RetrieveIntent(intentID string) (*stripe.PaymentIntent, error) {
	pi, ok := f.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("no such payment_intent: %s", intentID)
	}
	return pi, nil
}

func (f *fakeStripe) VerifyWebhook(payload []byte, _ string) (stripe.Event, error) {
	if f.verifyErr != nil {
		return stripe.Event{}, f.verifyErr
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

// --- Helpers ---

func newPaymentFixture(t *testing.T) (*memStore, *fakeStripe, *memSink, *services.PaymentService, *models.Order) {
	t.Helper()
	store := newMemStore()
	gateway := newFakeStripe()
	sink := &memSink{}
	logger := zap.NewNop()
	paySvc := services.NewPaymentService(store, gateway, events.NewPublisher(logger, sink), logger)

	orderSvc := newOrderService(store, &memSink{})
	userID := uuid.New()
	product := seedProduct(t, store, "Widget", "20.00", 10)
	order, err := orderSvc.CreateOrder(context.Background(), userID, createRequest(
		services.CreateOrderItem{ProductID: product.ID, Quantity: 2},
	))
	assert.NoError(t, err)

	return store, gateway, sink, paySvc, order
}

func webhookPayload(t *testing.T, eventType, intentID string, orderID uuid.UUID) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":       intentID,
		"metadata": map[string]string{"order_id": orderID.String()},
	})
	assert.NoError(t, err)
	payload, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": map[string]interface{}{"object": json.RawMessage(raw)},
	})
	assert.NoError(t, err)
	return payload
}

// --- Tests ---

func TestCreateIntent_Success(t *testing.T) {
	store, gateway, _, paySvc, order := newPaymentFixture(t)

	actor := services.Actor{UserID: order.UserID, Role: models.RoleUser}
	intent, err := paySvc.CreateIntent(context.Background(), actor, order.ID)

	assert.NoError(t, err)
	assert.NotEmpty(t, intent.PaymentIntentID)
	assert.NotEmpty(t, intent.ClientSecret)

	// amount is the order total in cents: 2 x 20.00 + 4.00 tax + 10.00 shipping
	pi := gateway.intents[intent.PaymentIntentID]
	assert.Equal(t, int64(5400), pi.Amount)
	assert.Equal(t, order.ID.String(), pi.Metadata["order_id"])

	// an audit row exists for the intent
	payment, err := store.Payments().FindByStripePaymentID(context.Background(), intent.PaymentIntentID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, int64(5400), payment.Amount)
	assert.Equal(t, "pending", payment.Status)
}

func TestCreateIntent_StrangerForbidden(t *testing.T) {
	_, _, _, paySvc, order := newPaymentFixture(t)

	actor := services.Actor{UserID: uuid.New(), Role: models.RoleUser}
	_, err := paySvc.CreateIntent(context.Background(), actor, order.ID)

	var unauthorizedErr *services.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorizedErr)
}

func TestCreateIntent_AlreadyPaidRejected(t *testing.T) {
	store, _, _, paySvc, order := newPaymentFixture(t)

	order.PaymentStatus = models.PaymentStatusPaid
	assert.NoError(t, store.Orders().Update(context.Background(), order))

	actor := services.Actor{UserID: order.UserID, Role: models.RoleUser}
	_, err := paySvc.CreateIntent(context.Background(), actor, order.ID)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestHandleWebhook_SucceededMarksPaidAndProcessing(t *testing.T) {
	store, _, sink, paySvc, order := newPaymentFixture(t)

	actor := services.Actor{UserID: order.UserID, Role: models.RoleUser}
	intent, err := paySvc.CreateIntent(context.Background(), actor, order.ID)
	assert.NoError(t, err)

	payload := webhookPayload(t, "payment_intent.succeeded", intent.PaymentIntentID, order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))

	updated, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	payment, _ := store.Payments().FindByStripePaymentID(context.Background(), intent.PaymentIntentID)
	assert.Equal(t, "succeeded", payment.Status)
	assert.NotNil(t, payment.SucceededAt)

	assert.Equal(t, []string{events.TypePaymentSucceeded}, sink.typesSeen())
}

func TestHandleWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	store, _, sink, paySvc, order := newPaymentFixture(t)

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_dup", order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))

	updated, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

	// only the first delivery published an event
	assert.Equal(t, []string{events.TypePaymentSucceeded}, sink.typesSeen())
}

func TestHandleWebhook_FailureAfterPaidStaysPaid(t *testing.T) {
	store, _, sink, paySvc, order := newPaymentFixture(t)

	succeeded := webhookPayload(t, "payment_intent.succeeded", "pi_1", order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), succeeded, "sig"))

	failed := webhookPayload(t, "payment_intent.payment_failed", "pi_1", order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), failed, "sig"))

	updated, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	assert.Equal(t, []string{events.TypePaymentSucceeded}, sink.typesSeen())
}

func TestHandleWebhook_FailedMarksFailed(t *testing.T) {
	store, _, sink, paySvc, order := newPaymentFixture(t)

	payload := webhookPayload(t, "payment_intent.payment_failed", "pi_1", order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))

	updated, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
	// order status is untouched by a failure
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	assert.Equal(t, []string{events.TypePaymentFailed}, sink.typesSeen())
}

func TestHandleWebhook_UnknownOrderIgnored(t *testing.T) {
	_, _, sink, paySvc, _ := newPaymentFixture(t)

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_1", uuid.New())
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))
	assert.Empty(t, sink.typesSeen())
}

func TestHandleWebhook_BadSignatureRejected(t *testing.T) {
	store, gateway, _, paySvc, order := newPaymentFixture(t)
	gateway.verifyErr = errors.New("signature mismatch")

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_1", order.ID)
	err := paySvc.HandleWebhook(context.Background(), payload, "bad-sig")

	var verifyErr *services.PaymentVerificationError
	assert.ErrorAs(t, err, &verifyErr)

	// nothing changed
	updated, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPending, updated.PaymentStatus)
}

func TestHandleWebhook_UnhandledEventTypeAcknowledged(t *testing.T) {
	_, _, sink, paySvc, order := newPaymentFixture(t)

	payload := webhookPayload(t, "charge.refund.updated", "pi_1", order.ID)
	assert.NoError(t, paySvc.HandleWebhook(context.Background(), payload, "sig"))
	assert.Empty(t, sink.typesSeen())
}

func TestConfirmPayment_SucceededIntentReconciles(t *testing.T) {
	store, gateway, _, paySvc, order := newPaymentFixture(t)

	actor := services.Actor{UserID: order.UserID, Role: models.RoleUser}
	intent, err := paySvc.CreateIntent(context.Background(), actor, order.ID)
	assert.NoError(t, err)

	gateway.intents[intent.PaymentIntentID].Status = stripe.PaymentIntentStatusSucceeded

	confirmed, err := paySvc.ConfirmPayment(context.Background(), &services.ConfirmPaymentRequest{
		PaymentIntentID: intent.PaymentIntentID,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, confirmed.Status)

	stored, _ := store.Orders().FindByID(context.Background(), order.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestConfirmPayment_UnsettledIntentRejected(t *testing.T) {
	_, _, _, paySvc, order := newPaymentFixture(t)

	actor := services.Actor{UserID: order.UserID, Role: models.RoleUser}
	intent, err := paySvc.CreateIntent(context.Background(), actor, order.ID)
	assert.NoError(t, err)

	_, err = paySvc.ConfirmPayment(context.Background(), &services.ConfirmPaymentRequest{
		PaymentIntentID: intent.PaymentIntentID,
	})

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
