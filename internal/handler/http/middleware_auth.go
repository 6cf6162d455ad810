package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
)

// auth enforces bearer authentication when the server has a token sign key.
// Without one every request passes unchanged.
//
// On success the user id of the token is stored under [utils.UserIDCtxKey].
// Missing, malformed, expired and otherwise invalid tokens are answered
// with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authService := h.services.AuthService
		if !authService.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.writeError(w, r, ErrEmptyAuthorizationHeader, "*Handler.auth")
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			h.writeError(w, r, ErrInvalidAuthorizationHeader, "*Handler.auth")
			return
		}

		ctx := r.Context()
		token, err := authService.ParseToken(ctx, tokenString)
		if err != nil {
			h.writeError(w, r, err, "*Handler.auth")
			return
		}

		logger.FromRequest(r).Debug().Int64("user_id", token.UserID).Msg("request authenticated")
		ctx = context.WithValue(ctx, utils.UserIDCtxKey, token.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
