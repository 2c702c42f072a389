package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/navigation"
)

const maxLinkBody = 64 << 10

// CreateLink answers POST /api/links.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body *domain.NewLink
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLinkBody)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			d.Logger.Debug("rejected link body", logger.Error(err))
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Error())
				return
			}
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		rec, err := d.Navigation.AddLink(r.Context(), body)
		if err != nil {
			if navigation.IsValidation(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, mutationResponse{
			Success: true,
			Message: "link added",
			Data:    &rec,
		})
	}
}

// DeleteLink answers DELETE /api/links/{id}.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Navigation.DeleteLink(r.Context(), id); err != nil {
			if navigation.IsValidation(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "link deleted"})
	}
}
