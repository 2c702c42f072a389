package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/handlers"
)

func init() { Register("page", registerPage) }

func registerPage(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Page(d))
}
