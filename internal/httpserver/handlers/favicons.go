package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/utils"
)

type flushResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// FlushFavicons drops every cached favicon.
func FlushFavicons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.FaviconStore == nil {
			writeError(w, http.StatusNotFound, "favicon cache disabled")
			return
		}
		n, err := d.FaviconStore.FlushIcons(r.Context())
		if err != nil {
			d.Logger.Error("favicon flush failed", logger.Int("deleted", n), logger.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		d.Logger.Info("favicon cache flushed via endpoint",
			logger.Int("deleted", n),
			logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
		writeJSON(w, http.StatusOK, flushResponse{Success: true, Message: "favicon cache flushed", Deleted: n})
	}
}

// InvalidateFavicon drops the cached favicon of one hostname.
func InvalidateFavicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.FaviconStore == nil {
			writeError(w, http.StatusNotFound, "favicon cache disabled")
			return
		}
		host := strings.TrimSpace(chi.URLParam(r, "host"))
		if host == "" {
			writeError(w, http.StatusBadRequest, "host is required")
			return
		}
		if err := d.FaviconStore.InvalidateIcon(r.Context(), host); err != nil {
			d.Logger.Error("favicon invalidation failed", logger.String("host", host), logger.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "favicon invalidated"})
	}
}
