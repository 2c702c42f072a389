package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
)

// Navigation answers GET /api/navigation. It always succeeds: backend
// failures come back as the fallback dataset flagged isMockData.
func Navigation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Navigation.Navigation(r.Context()))
	}
}
