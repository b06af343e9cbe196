package app

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// CheckoutSessions is the slice of the payment gateway the handlers need:
// opening a hosted checkout and resolving the session behind a payment.
type CheckoutSessions interface {
	Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	// ByPaymentIntent returns the checkout session that produced the given
	// payment intent, or nil when no session matches.
	ByPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.CheckoutSession, error)
}

type stripeSessions struct {
	api *client.API
}

// NewStripeClient builds a Stripe-backed CheckoutSessions with a client
// constructed once at startup rather than a package-global key.
func NewStripeClient(secretKey string) CheckoutSessions {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeSessions{api: api}
}

func (s *stripeSessions) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.api.CheckoutSessions.New(params)
}

func (s *stripeSessions) ByPaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	iter := s.api.CheckoutSessions.List(params)
	for iter.Next() {
		return iter.CheckoutSession(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}
