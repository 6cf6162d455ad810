package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/go-chi/chi/v5"
)

func modelKey(r *http.Request) (string, int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidModelID, chi.URLParam(r, "id"))
	}
	return chi.URLParam(r, "collection"), id, nil
}

func (h *Handler) getModel(w http.ResponseWriter, r *http.Request) {
	collection, id, err := modelKey(r)
	if err != nil {
		h.writeError(w, r, err, "*Handler.getModel")
		return
	}

	record, err := h.services.ModelService.GetModel(r.Context(), collection, id)
	if err != nil {
		h.writeError(w, r, err, "*Handler.getModel")
		return
	}

	if _, err = utils.WriteJSON(w, record, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.getModel").Send()
	}
}

func (h *Handler) putModel(w http.ResponseWriter, r *http.Request) {
	collection, id, err := modelKey(r)
	if err != nil {
		h.writeError(w, r, err, "*Handler.putModel")
		return
	}

	var data json.RawMessage
	if err = json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidJSON, err), "*Handler.putModel")
		return
	}

	record, err := h.services.ModelService.PutModel(r.Context(), collection, id, data)
	if err != nil {
		h.writeError(w, r, err, "*Handler.putModel")
		return
	}

	if _, err = utils.WriteJSON(w, record, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.putModel").Send()
	}
}

func (h *Handler) deleteModel(w http.ResponseWriter, r *http.Request) {
	collection, id, err := modelKey(r)
	if err != nil {
		h.writeError(w, r, err, "*Handler.deleteModel")
		return
	}

	if err = h.services.ModelService.DeleteModel(r.Context(), collection, id); err != nil {
		h.writeError(w, r, err, "*Handler.deleteModel")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
