package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/vitrine-labs/signage-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // admin UI dev server
	"http://localhost:5173",
}

// CORS returns middleware that applies the API's allowed origin policy.
// Origins from configuration replace the local-dev defaults entirely.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
