package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS lets browsers send the session cookies only to explicitly listed
// origins. An empty list or "*" opens the API to every origin without
// credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowCredentials := true
	if isWildcardOrigins(origins) {
		origins = []string{"*"}
		allowCredentials = false
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:           3600,
		AllowCredentials: allowCredentials,
	})

	return handler.Handler
}

func isWildcardOrigins(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
