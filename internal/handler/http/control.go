package http

import (
	"net/http"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

// restart answers POST /wa/restart once recreation has been initiated.
func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	operator, _ := utils.GetOperatorFromContext(r.Context())

	if err := h.services.LifecycleService.Restart(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.restart").Msg("restart failed")
		utils.WriteJSON(w, models.ControlResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	log.Info().Str("operator", operator).Msg("client restart requested")
	utils.WriteJSON(w, models.ControlResponse{OK: true}, http.StatusOK)
}

// logout answers POST /wa/logout. A failed credential erasure is reported as
// 500 with the error text.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	operator, _ := utils.GetOperatorFromContext(r.Context())

	if err := h.services.LifecycleService.Logout(r.Context()); err != nil {
		log.Err(err).Str("func", "*Handler.logout").Str("operator", operator).Msg("logout failed")
		utils.WriteJSON(w, models.ControlResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	log.Info().Str("operator", operator).Msg("logout completed")
	utils.WriteJSON(w, models.ControlResponse{OK: true}, http.StatusOK)
}
