package http

import (
	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/service"
)

type Handler struct {
	services *service.Services

	staticDir       string
	controlTokenKey string
	controlIssuer   string

	logger *logger.Logger
}

// NewHandler returns the HTTP handler. Control endpoints require a bearer
// token only when app.ControlTokenKey is set.
func NewHandler(services *service.Services, server config.Server, app config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:        services,
		staticDir:       server.StaticDir,
		controlTokenKey: app.ControlTokenKey,
		controlIssuer:   app.ControlTokenIssuer,
		logger:          logger,
	}
}
