package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/utils"
)

// RefreshToken asks the token warmer to exchange a new tenant token now.
func RefreshToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.TokenRefresh == nil {
			writeError(w, http.StatusNotFound, "the table backend does not use tokens")
			return
		}

		select {
		case d.TokenRefresh <- struct{}{}:
			d.Logger.Info("manual token refresh triggered via endpoint",
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
			writeJSON(w, http.StatusAccepted, mutationResponse{Success: true, Message: "token refresh triggered"})
		default:
			d.Logger.Warn("token refresh already pending",
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
			writeError(w, http.StatusTooManyRequests, "token refresh already in progress, please wait")
		}
	}
}
