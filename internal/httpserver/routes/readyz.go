package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// registerOps mounts the operator endpoints behind the CIDR allow-list.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	ops.Get("/healthz", handlers.Healthz(d))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
	mutate := ops.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	mutate.Post("/token/refresh", handlers.RefreshToken(d))
	mutate.Post("/favicons/flush", handlers.FlushFavicons(d))
	mutate.Delete("/favicons/{host}", handlers.InvalidateFavicon(d))
}
