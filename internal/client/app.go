package client

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
)

// probeTimeout bounds the startup reachability check.
const probeTimeout = 5 * time.Second

type App struct {
	relay  adapter.RelayAdapter
	ui     UI
	logger *logger.Logger
}

func NewApp(relay adapter.RelayAdapter, ui UI, log *logger.Logger) (*App, error) {
	if relay == nil || ui == nil {
		return nil, ErrIncompleteApp
	}
	return &App{relay: relay, ui: ui, logger: log}, nil
}

// Run probes the relay status once and then hands control to the UI.
// An unreachable relay is logged; the dashboard still starts and keeps
// reconnecting.
func (a *App) Run(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	status, err := a.relay.Status(probeCtx)
	cancel()
	if err != nil {
		a.logger.Warn().Err(err).Str("func", "*App.Run").Msg("relay status probe failed")
	} else {
		a.logger.Info().Str("func", "*App.Run").
			Str("state", status.State).
			Uint64("generation", status.Generation).
			Msg("relay reachable")
	}

	if err = a.ui.Run(ctx); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
