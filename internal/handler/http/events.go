package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
)

// streamEvents pushes relayed lifecycle events to the client as server-sent
// events until the client goes away. The subscription is registered before
// the headers are flushed so that nothing relayed after the 200 is missed.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Err(ErrStreamingUnsupported).Str("func", "*Handler.streamEvents").Send()
		http.Error(w, ErrStreamingUnsupported.Error(), http.StatusInternalServerError)
		return
	}

	subscriberID := uuid.NewString()
	sub := h.services.EventStream.Subscribe(subscriberID)
	defer h.services.EventStream.Unsubscribe(subscriberID)

	log.Debug().Str("subscriber", subscriberID).Msg("event stream opened")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("subscriber", subscriberID).Msg("event stream closed by client")
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			if err := utils.WriteEvent(w, event); err != nil {
				log.Warn().Err(err).Str("subscriber", subscriberID).Msg("error writing event")
				return
			}
			flusher.Flush()
		}
	}
}
