package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// Favicon answers GET /api/favicon?url=. A bad url is a 400; any upstream
// failure serves the transparent placeholder with a short cache lifetime.
func Favicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, err := favicon.ParseTarget(r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		icon, err := d.Favicons.Fetch(r.Context(), host)
		if err != nil {
			d.Logger.Debug("favicon fallback", logger.String("host", host), logger.Error(err))
			writeIcon(w, "image/png", favicon.FallbackPNG, favicon.FallbackMaxAge.Seconds())
			return
		}
		writeIcon(w, icon.ContentType, icon.Data, favicon.MaxAge.Seconds())
	}
}

func writeIcon(w http.ResponseWriter, contentType string, data []byte, maxAge float64) {
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
