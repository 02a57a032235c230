package billing

import (
	"context"
	"net/http"

	"github.com/adelcourt/fiches-backend/api/responses"
	"github.com/adelcourt/fiches-backend/api/validators"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/adelcourt/fiches-backend/pkg/logger"
)

type Service interface {
	CreateCheckoutSession(ctx context.Context, email string) (string, error)
	CreatePortalSession(ctx context.Context, email string) (string, error)
}

// CreateCheckoutSession opens a subscription checkout for the posted email
// and returns the session id the frontend hands to Stripe.js.
func CreateCheckoutSession(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var payload checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.CreateCheckoutSession(r.Context(), payload.UserEmail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutSessionResponse{ID: id})
	}
}

// CreatePortalSession opens a Stripe customer-portal session for an existing
// subscriber so they can manage or cancel their plan.
func CreatePortalSession(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var payload portalSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.CreatePortalSession(r.Context(), payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, portalSessionResponse{URL: url})
	}
}

type checkoutSessionRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
}

type checkoutSessionResponse struct {
	ID string `json:"id"`
}

type portalSessionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type portalSessionResponse struct {
	URL string `json:"url"`
}
