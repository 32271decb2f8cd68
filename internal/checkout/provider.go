package checkout

import (
	"context"

	pkgstripe "github.com/angelmondragon/lumina-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
)

// Provider is the subset of the Stripe Checkout API the storefront uses.
type Provider interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error)
}

// sessionAPI is satisfied by stripe.Client.V1CheckoutSessions.
type sessionAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error)
}

type stripeProvider struct {
	sessions sessionAPI
}

// NewStripeProvider binds the hosted checkout endpoints of client's API
// instance. It returns nil when client carries no API.
func NewStripeProvider(client *pkgstripe.Client) Provider {
	api := client.API()
	if api == nil || api.V1CheckoutSessions == nil {
		return nil
	}
	return &stripeProvider{sessions: api.V1CheckoutSessions}
}

func (p *stripeProvider) Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return p.sessions.Create(ctx, params)
}

func (p *stripeProvider) Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error) {
	return p.sessions.Retrieve(ctx, id, params)
}
