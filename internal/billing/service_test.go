package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/adelcourt/fiches-backend/pkg/config"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/stripe/stripe-go/v84"
)

func testStripeConfig() config.StripeConfig {
	return config.StripeConfig{
		Currency:           "eur",
		UnitAmountCents:    1490,
		ProductName:        "Abonnement Premium",
		ProductDescription: "Accès complet à tous les services",
		SuccessURL:         "https://app.example.com/fiches",
		CancelURL:          "https://app.example.com/cancel",
		PortalReturnURL:    "https://app.example.com/dashboard",
	}
}

func TestService_CreateCheckoutSessionBuildsInlinePrice(t *testing.T) {
	gateway := &stubBillingGateway{
		checkoutSession: &stripe.CheckoutSession{ID: "cs_test_123"},
	}
	service, err := NewService(ServiceParams{Gateway: gateway, Stripe: testStripeConfig()})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	id, err := service.CreateCheckoutSession(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("create checkout session: %v", err)
	}
	if id != "cs_test_123" {
		t.Fatalf("unexpected session id %q", id)
	}

	params := gateway.checkoutParams
	if params == nil {
		t.Fatalf("gateway never received params")
	}
	if got := stripe.StringValue(params.Mode); got != string(stripe.CheckoutSessionModeSubscription) {
		t.Fatalf("expected subscription mode, got %q", got)
	}
	if got := stripe.StringValue(params.CustomerEmail); got != "a@example.com" {
		t.Fatalf("unexpected customer email %q", got)
	}
	if len(params.LineItems) != 1 {
		t.Fatalf("expected one line item, got %d", len(params.LineItems))
	}
	priceData := params.LineItems[0].PriceData
	if priceData == nil {
		t.Fatalf("expected inline price data")
	}
	if got := stripe.Int64Value(priceData.UnitAmount); got != 1490 {
		t.Fatalf("unexpected unit amount %d", got)
	}
	if got := stripe.StringValue(priceData.Currency); got != "eur" {
		t.Fatalf("unexpected currency %q", got)
	}
	if priceData.Recurring == nil || stripe.StringValue(priceData.Recurring.Interval) != "month" {
		t.Fatalf("expected monthly recurrence")
	}
	if got := params.Metadata["userEmail"]; got != "a@example.com" {
		t.Fatalf("expected email carried in metadata, got %q", got)
	}
}

func TestService_CreateCheckoutSessionWrapsProviderFault(t *testing.T) {
	gateway := &stubBillingGateway{checkoutErr: errors.New("stripe down")}
	service, err := NewService(ServiceParams{Gateway: gateway, Stripe: testStripeConfig()})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	if _, err := service.CreateCheckoutSession(context.Background(), "a@example.com"); err == nil {
		t.Fatalf("expected provider fault to propagate")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_CreatePortalSession(t *testing.T) {
	gateway := &stubBillingGateway{
		customer:      &stripe.Customer{ID: "cus_x", Email: "a@example.com"},
		portalSession: &stripe.BillingPortalSession{URL: "https://billing.stripe.com/p/session_x"},
	}
	service, err := NewService(ServiceParams{Gateway: gateway, Stripe: testStripeConfig()})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	url, err := service.CreatePortalSession(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("create portal session: %v", err)
	}
	if url != "https://billing.stripe.com/p/session_x" {
		t.Fatalf("unexpected portal url %q", url)
	}
	if gateway.portalParams == nil || stripe.StringValue(gateway.portalParams.Customer) != "cus_x" {
		t.Fatalf("portal session must target the resolved customer")
	}
	if got := stripe.StringValue(gateway.portalParams.ReturnURL); got != "https://app.example.com/dashboard" {
		t.Fatalf("unexpected return url %q", got)
	}
}

func TestService_CreatePortalSessionUnknownCustomer(t *testing.T) {
	gateway := &stubBillingGateway{}
	service, err := NewService(ServiceParams{Gateway: gateway, Stripe: testStripeConfig()})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = service.CreatePortalSession(context.Background(), "ghost@example.com")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

type stubBillingGateway struct {
	checkoutSession *stripe.CheckoutSession
	checkoutErr     error
	checkoutParams  *stripe.CheckoutSessionParams

	customer    *stripe.Customer
	customerErr error

	portalSession *stripe.BillingPortalSession
	portalErr     error
	portalParams  *stripe.BillingPortalSessionParams
}

func (g *stubBillingGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.checkoutParams = params
	return g.checkoutSession, g.checkoutErr
}

func (g *stubBillingGateway) FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	return g.customer, g.customerErr
}

func (g *stubBillingGateway) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	g.portalParams = params
	return g.portalSession, g.portalErr
}
