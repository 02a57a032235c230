package stripe

import (
	"context"
	"testing"

	"github.com/adelcourt/fiches-backend/pkg/config"
)

func TestNewClientValidatesKeyAgainstEnv(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_abc", Env: "test"}, nil); err == nil {
		t.Fatal("expected live key to be rejected in test env")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: "live"}, nil); err == nil {
		t.Fatal("expected test key to be rejected in live env")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "", Env: "test"}, nil); err == nil {
		t.Fatal("expected missing api key to be rejected")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: "staging"}, nil); err == nil {
		t.Fatal("expected unknown env to be rejected")
	}
}

func TestNewClientKeepsSigningSecret(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc",
		Secret: " whsec_123 ",
		Env:    "test",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := client.SigningSecret(); got != "whsec_123" {
		t.Fatalf("expected trimmed signing secret, got %q", got)
	}
	if client.Environment() != "test" {
		t.Fatalf("unexpected environment %q", client.Environment())
	}
}
