package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	CachedIcons *int   `json:"cached_icons,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports the state of the backend, the token cache and Redis.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"backend": {OK: true, Mode: d.Navigation.Backend()},
			"token":   checkToken(d),
			"redis":   checkRedis(ctx, d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		})
	}
}

func determineServingMode(components map[string]componentStatus) string {
	if token, ok := components["token"]; ok && !token.OK {
		return "fallback" // reads are answered from the mock dataset
	}
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "degraded"
	}
	return "live"
}

func checkToken(d deps.Deps) componentStatus {
	if d.Tokens == nil {
		return componentStatus{OK: true, Mode: "not-required"}
	}
	exp := d.Tokens.ExpiresAt()
	if exp.IsZero() || !exp.After(d.Now()) {
		return componentStatus{OK: false, Mode: "cold", Impact: "next request exchanges credentials"}
	}
	return componentStatus{OK: true, Mode: "cached", ExpiresAt: exp.UTC().Format(time.RFC3339)}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.FaviconStore == nil {
		return componentStatus{OK: true, Mode: "disabled", Impact: "favicons-not-cached"}
	}
	if err := d.FaviconStore.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "favicons-not-cached", Error: err.Error()}
	}

	st := componentStatus{OK: true, Mode: "optimal", Impact: "favicons-cached"}
	if hosts, err := d.FaviconStore.CachedHosts(ctx); err == nil {
		n := len(hosts)
		st.CachedIcons = &n
	}
	return st
}
