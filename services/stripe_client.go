package services

import (
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeAPI is the slice of the Stripe client the payment service needs.
// It exists so tests can stand in a fake gateway.
type StripeAPI interface {
	CreateIntent(amount int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error)
	RetrieveIntent(intentID string) (*stripe.PaymentIntent, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeService talks to the real Stripe API.
type StripeService struct {
	webhookSecret string
}

func NewStripeService(secretKey, webhookSecret string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookSecret: webhookSecret}
}

func (s *StripeService) CreateIntent(amount int64, currency, description string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		Description:        stripe.String(description),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

func (s *StripeService) RetrieveIntent(intentID string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(intentID, nil)
}

func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}
