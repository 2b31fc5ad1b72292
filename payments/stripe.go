package payments

import (
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider talks to the real Stripe API through an injected client
// instance, so several isolated providers can coexist in tests.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error) {
	title := params.CampaignTitle
	if len(title) > 50 {
		title = title[:50]
	}

	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Donation: " + title),
						Description: stripe.String("Supporting education"),
					},
					UnitAmount: stripe.Int64(int64(math.Round(params.Amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.DonorEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.DonorEmail)
	}
	sessionParams.AddMetadata("campaignId", params.CampaignID)
	sessionParams.AddMetadata("donorId", params.DonorID)
	sessionParams.AddMetadata("donorName", params.DonorName)
	sessionParams.AddMetadata("anonymous", fmt.Sprintf("%t", params.Anonymous))
	sessionParams.AddMetadata("idempotencyKey", params.IdempotencyKey)
	sessionParams.SetIdempotencyKey(params.IdempotencyKey)

	s, err := p.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, err
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if p.webhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEvent(payload, signature, p.webhookSecret)
}
