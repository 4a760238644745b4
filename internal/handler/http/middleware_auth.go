package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

// auth guards the control endpoints with an HS256 bearer token when a
// control token key is configured; otherwise requests pass through.
//
// On success the token subject is stored under [utils.OperatorCtxKey].
// Rejections answer 401 with a {"ok":false,"error":...} body.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.controlTokenKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteJSON(w, models.ControlResponse{Error: ErrEmptyAuthorizationHeader.Error()}, http.StatusUnauthorized)
			return
		}

		token, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			utils.WriteJSON(w, models.ControlResponse{Error: ErrInvalidAuthorizationHeader.Error()}, http.StatusUnauthorized)
			return
		}

		operator, err := utils.ValidateControlToken(token, h.controlTokenKey, h.controlIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing control token")
			utils.WriteJSON(w, models.ControlResponse{Error: http.StatusText(http.StatusUnauthorized)}, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.OperatorCtxKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
