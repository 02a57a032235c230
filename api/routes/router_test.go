package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adelcourt/fiches-backend/pkg/config"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubBillingService struct{}

func (stubBillingService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	return "cs_test", nil
}

func (stubBillingService) CreatePortalSession(ctx context.Context, email string) (string, error) {
	return "https://billing.stripe.com/p/test", nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.CORS.MaxAgeSeconds = 86400
	return NewRouter(cfg, nil, stubPinger{}, stubPinger{}, nil, nil, nil, nil, stubBillingService{}, nil)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_WebhookRejectsNonPOST(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/stripe", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode 405 payload: %v", err)
	}
	if body["message"] != "Method Not Allowed" {
		t.Fatalf("unexpected 405 body %v", body)
	}
}

func TestRouter_BillingPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/billing/checkout-session", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow origin, got %q", got)
	}
}

func TestRouter_WebhookEchoAnswersAnyMethod(t *testing.T) {
	router := newTestRouter()

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/webhooks/test", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s /api/v1/webhooks/test: expected 200, got %d", method, rec.Code)
		}
	}
}
