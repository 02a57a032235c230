package stripewebhook

import (
	"context"

	pkgstripe "github.com/adelcourt/fiches-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/customer"
)

// Gateway exposes the subset of Stripe operations the reconciler depends on:
// re-fetching partial checkout sessions and resolving customers to emails.
type Gateway interface {
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
}

type gatewayWrapper struct{}

// NewGateway wraps the provided Stripe client so the webhook service can be
// tested with a stub.
func NewGateway(api *pkgstripe.Client) Gateway {
	if api == nil {
		return nil
	}
	return &gatewayWrapper{}
}

func (w *gatewayWrapper) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")
	params.AddExpand("customer")
	return checkoutsession.Get(id, params)
}

func (w *gatewayWrapper) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	return customer.Get(id, params)
}
