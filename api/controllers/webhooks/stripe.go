package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adelcourt/fiches-backend/api/responses"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/adelcourt/fiches-backend/pkg/logger"
	"github.com/adelcourt/fiches-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

const signatureHeader = "Stripe-Signature"

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook receives Stripe subscription lifecycle deliveries.
//
// Deliveries that fail before verification (undecodable body, missing or bad
// signature, missing secret) come back as 400 so Stripe marks them failed.
// Once a delivery is verified, reconciliation faults are logged and absorbed
// and the handler still acknowledges with 200, otherwise Stripe retries the
// same event indefinitely against a bug it cannot fix.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		secret := client.SigningSecret()
		if secret == "" {
			m.IncRejected("missing_secret")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "Webhook secret not configured"))
			return
		}

		payload, err := readPayload(r)
		if err != nil {
			m.IncRejected("decode")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sigHeader := r.Header.Get(signatureHeader)
		if sigHeader == "" {
			m.IncRejected("missing_signature")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "No Stripe signature"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, secret)
		if err != nil {
			m.IncRejected("signature")
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "Webhook signature verification failed"))
			return
		}

		eventType := string(event.Type)
		if logg != nil {
			ctx = logg.WithEventType(ctx, eventType)
			ctx = logg.WithEventID(ctx, event.ID)
		}
		m.IncReceived(eventType)

		if guard != nil {
			alreadyProcessed, guardErr := guard.CheckAndMark(ctx, event.ID)
			if guardErr != nil {
				// A degraded cache must not block delivery; reconciliation
				// is idempotent, so processing twice is safe.
				if logg != nil {
					logg.Warn(ctx, fmt.Sprintf("idempotency check failed, processing anyway: %v", guardErr))
				}
			} else if alreadyProcessed {
				if logg != nil {
					logg.Info(ctx, "duplicate delivery suppressed")
				}
				responses.WriteSuccess(w, map[string]bool{"received": true})
				return
			}
		}

		start := time.Now()
		if err := svc.HandleEvent(ctx, &event); err != nil {
			if guard != nil {
				_ = guard.Delete(ctx, event.ID)
			}
			m.IncFailed(eventType)
			if logg != nil {
				logg.Error(ctx, "webhook.reconcile_failed", err)
			}
			// Acknowledge anyway: retry storms cannot fix store faults.
			responses.WriteSuccess(w, map[string]bool{"received": true})
			return
		}
		m.ObserveDuration(eventType, time.Since(start))

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("stripe event %s processed", event.ID))
		}
		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}
