package webhooks

import (
	"net/http"
	"time"

	"github.com/adelcourt/fiches-backend/api/responses"
	"github.com/adelcourt/fiches-backend/pkg/logger"
)

// Echo is a diagnostic endpoint for verifying that webhook traffic reaches
// the service at all. It reports what arrived without verifying anything, so
// a misconfigured Stripe endpoint can be debugged before secrets are set up.
func Echo(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"method":        r.Method,
				"path":          r.URL.Path,
				"has_body":      r.ContentLength != 0,
				"has_signature": r.Header.Get(signatureHeader) != "",
			})
			logg.Info(ctx, "webhook.echo")
		}

		responses.WriteSuccess(w, map[string]any{
			"message":       "webhook endpoint reachable",
			"hasSignature":  r.Header.Get(signatureHeader) != "",
			"contentLength": r.ContentLength,
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
