package unlock

import (
	"context"

	"travellocal/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway is the PaymentGateway backed by Stripe payment intents. The
// package-level stripe.Key must be set.
type StripeGateway struct{}

// NewStripeGateway returns a gateway, or nil when no key is configured.
func NewStripeGateway(key string) PaymentGateway {
	if key == "" {
		return nil
	}
	stripe.Key = key
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &models.PaymentIntentResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
	}, nil
}

func (g *StripeGateway) IntentStatus(ctx context.Context, intentID string) (bool, map[string]string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return false, nil, err
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, pi.Metadata, nil
}
