package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/mw"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.CORS(d.CORSOrigins))
		api.Get("/navigation", handlers.Navigation(d))
		api.Get("/favicon", handlers.Favicon(d))

		api.Group(func(write chi.Router) {
			write.Use(
				mw.EnforceHost(d.AllowedHosts, d.Logger),
				mw.RateLimit(mw.RateLimitConfig{
					Burst:             d.RateLimitBurst,
					RefillPerIPPerMin: d.RateLimitPerMinute,
					MaxEntries:        10000,
					TrustProxy:        d.TrustProxy,
				}),
			)
			write.Post("/links", handlers.CreateLink(d))
			write.Delete("/links/{id}", handlers.DeleteLink(d))
		})
	})
}
