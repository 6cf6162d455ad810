package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
)

type tokenRequest struct {
	UserID int64 `json:"user_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// issueToken hands out a bearer token for an existing user. It is
// development tooling: there are no credentials to check.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidJSON, err), "*Handler.issueToken")
		return
	}

	token, err := h.services.AuthService.CreateToken(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, err, "*Handler.issueToken")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token.SignedString)
	if _, err = utils.WriteJSON(w, tokenResponse{Token: token.SignedString}, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.issueToken").Send()
	}
}
