// Package payments wraps the payment provider behind the two operations the
// rest of the backend needs: create a hosted checkout session, and verify and
// parse a signed webhook event. Handlers receive a Provider at construction,
// so tests run against a fake instead of the Stripe API.
package payments

import (
	"errors"

	stripe "github.com/stripe/stripe-go/v82"
)

// ErrNotConfigured is returned when the webhook secret is missing. Callers
// must treat it as a server misconfiguration, never as a verification bypass.
var ErrNotConfigured = errors.New("payments: webhook secret not configured")

// CheckoutParams describes one hosted checkout session for a donation.
type CheckoutParams struct {
	CampaignID    string
	CampaignTitle string
	// Amount in whole currency units (dollars)
	Amount     float64
	DonorID    string
	DonorName  string
	DonorEmail string
	Anonymous  bool
	SuccessURL string
	CancelURL  string
	// IdempotencyKey is passed through to the provider so retried network
	// calls are deduplicated on their side as well
	IdempotencyKey string
}

// CheckoutSession is the provider's reference to a hosted payment page.
type CheckoutSession struct {
	ID  string
	URL string
}

type Provider interface {
	CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error)
	// ConstructEvent verifies the signature over the exact raw body and
	// parses the event. It must be called before any other use of the body.
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}
