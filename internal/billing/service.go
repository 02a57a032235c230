package billing

import (
	"context"
	"errors"

	"github.com/adelcourt/fiches-backend/pkg/config"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/adelcourt/fiches-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

// Service creates Stripe checkout and customer-portal sessions for the
// subscription offering. The product is not pre-provisioned in Stripe:
// checkout sessions carry inline price data built from configuration.
type Service struct {
	gateway Gateway
	cfg     config.StripeConfig
	logg    *logger.Logger
}

type ServiceParams struct {
	Gateway Gateway
	Stripe  config.StripeConfig
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, errors.New("billing gateway is required")
	}
	return &Service{
		gateway: params.Gateway,
		cfg:     params.Stripe,
		logg:    params.Logger,
	}, nil
}

// CreateCheckoutSession opens a subscription checkout for the given email and
// returns the session id the frontend redirects with.
func (s *Service) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:      stripe.String(email),
		SuccessURL:         stripe.String(s.cfg.SuccessURL),
		CancelURL:          stripe.String(s.cfg.CancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(s.cfg.UnitAmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(s.cfg.ProductName),
						Description: stripe.String(s.cfg.ProductDescription),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
			},
		},
	}
	params.AddMetadata("userEmail", email)

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		s.logg.Info(ctx, "checkout session created")
	}
	return session.ID, nil
}

// CreatePortalSession resolves the Stripe customer for the given email and
// opens a billing portal session. Unknown emails map to a not-found error so
// the frontend can tell "no subscription yet" apart from a provider outage.
func (s *Service) CreatePortalSession(ctx context.Context, email string) (string, error) {
	cust, err := s.gateway.FindCustomerByEmail(ctx, email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer")
	}
	if cust == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	session, err := s.gateway.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(cust.ID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		s.logg.Info(ctx, "portal session created")
	}
	return session.URL, nil
}
