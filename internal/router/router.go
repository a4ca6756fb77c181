package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-videotube/internal/config"
	"go-videotube/internal/handler"
	"go-videotube/internal/middleware"
)

type Handlers struct {
	Account *handler.AccountHandler
	Channel *handler.ChannelHandler
	Health  *handler.HealthHandler
	Docs    *handler.DocsHandler
	// Media serves locally stored blobs; nil when media lives elsewhere.
	Media http.Handler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.TrustedProxies)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	if h.Media != nil {
		r.With(middleware.StreamingTimeout(cfg.ServerWriteTimeout, 30*time.Second)).
			Handle("/media/*", http.StripPrefix("/media", h.Media))
	}

	r.Route("/api/v1/users", func(users chi.Router) {
		users.Use(middleware.Timeout(cfg.RequestTimeout))

		users.Post("/register", h.Account.Register)
		users.Post("/login", h.Account.Login)
		users.Post("/refresh", h.Account.Refresh)

		users.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)

			protected.Post("/logout", h.Account.Logout)
			protected.Post("/change-password", h.Account.ChangePassword)
			protected.Get("/me", h.Account.Me)
			protected.Patch("/update", h.Account.UpdateAccount)
			protected.Patch("/update-avatar", h.Account.UpdateAvatar)
			protected.Patch("/update-cover-image", h.Account.UpdateCoverImage)

			protected.Get("/c/{username}", h.Channel.Profile)
			protected.Post("/c/{username}/subscribe", h.Channel.Subscribe)
			protected.Delete("/c/{username}/subscribe", h.Channel.Unsubscribe)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"statusCode":404,"message":"Route not found","data":null,"success":false,"errors":[]}`))
	})

	return r
}
