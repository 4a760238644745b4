package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status := h.services.LifecycleService.Status()
	status.Subscribers = h.services.EventStream.SubscriberCount()

	utils.WriteJSON(w, status, http.StatusOK)
}

// getHistory answers GET /wa/history?type=message&type=qr&limit=50 with the
// most recent journaled events, newest first. Types may also be given
// comma-separated.
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	req, err := parseHistoryRequest(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getHistory").Msg("invalid history request")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	history, err := h.services.HistoryService.History(r.Context(), req)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getHistory").Msg("error reading history")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, history, http.StatusOK)
}

func parseHistoryRequest(r *http.Request) (models.HistoryRequest, error) {
	query := r.URL.Query()

	var req models.HistoryRequest
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 {
			return models.HistoryRequest{}, ErrInvalidLimit
		}
		req.Limit = limit
	}

	for _, value := range query["type"] {
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Types = append(req.Types, models.EventType(t))
			}
		}
	}

	return req, nil
}
