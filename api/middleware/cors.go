package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware applying the allowed origin policy for the
// billing endpoints. The checkout frontend is a static site, so the
// default policy is a wildcard with no credentials.
func CORS(allowedOrigins []string, maxAgeSeconds int) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Stripe-Signature", "X-Requested-With"},
		AllowCredentials: allowCredentials,
		MaxAge:           maxAgeSeconds,
	}).Handler
}
