package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

// mutationResponse is the body of every /api/links answer, errors included.
type mutationResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *domain.RawRecord `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, mutationResponse{Success: false, Message: msg})
}
