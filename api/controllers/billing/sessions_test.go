package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
)

func TestCreateCheckoutSession(t *testing.T) {
	svc := &fakeBillingService{checkoutID: "cs_test_abc"}
	handler := CreateCheckoutSession(svc, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", strings.NewReader(`{"userEmail":"a@example.com"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["id"] != "cs_test_abc" {
		t.Fatalf("unexpected session id %q", body["id"])
	}
	if svc.checkoutEmail != "a@example.com" {
		t.Fatalf("service received email %q", svc.checkoutEmail)
	}
}

func TestCreateCheckoutSessionMissingEmail(t *testing.T) {
	svc := &fakeBillingService{}
	handler := CreateCheckoutSession(svc, nil)

	for _, body := range []string{"", "{}", `{"userEmail":""}`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", strings.NewReader(body))
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
	if svc.checkoutCalls != 0 {
		t.Fatalf("service must not run without a valid email")
	}
}

func TestCreatePortalSession(t *testing.T) {
	svc := &fakeBillingService{portalURL: "https://billing.stripe.com/p/x"}
	handler := CreatePortalSession(svc, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/portal-session", strings.NewReader(`{"email":"a@example.com"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["url"] != "https://billing.stripe.com/p/x" {
		t.Fatalf("unexpected portal url %q", body["url"])
	}
}

func TestCreatePortalSessionUnknownCustomer(t *testing.T) {
	svc := &fakeBillingService{portalErr: pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")}
	handler := CreatePortalSession(svc, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/portal-session", strings.NewReader(`{"email":"ghost@example.com"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "customer not found" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

type fakeBillingService struct {
	checkoutID    string
	checkoutErr   error
	checkoutEmail string
	checkoutCalls int

	portalURL string
	portalErr error
}

func (f *fakeBillingService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	f.checkoutCalls++
	f.checkoutEmail = email
	return f.checkoutID, f.checkoutErr
}

func (f *fakeBillingService) CreatePortalSession(ctx context.Context, email string) (string, error) {
	return f.portalURL, f.portalErr
}
