package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-wa-relay/internal/service"
	"github.com/MKhiriev/go-wa-relay/internal/store"
)

var errorStatusMap = map[error]int{
	ErrInvalidLimit:             http.StatusBadRequest,
	service.ErrInvalidEventType: http.StatusBadRequest,
	service.ErrJournalDisabled:  http.StatusServiceUnavailable,
	service.ErrControllerClosed: http.StatusServiceUnavailable,

	store.ErrEraseFailed:        http.StatusInternalServerError,
	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
