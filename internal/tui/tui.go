// Package tui implements the operator dashboard: a terminal view of the
// relay's lifecycle state and live event feed, with restart, logout and
// copy-QR actions.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// reconnectDelay separates event stream reconnection attempts.
const reconnectDelay = 2 * time.Second

type TUI struct {
	relay  adapter.RelayAdapter
	build  models.AppBuildInfo
	logger *logger.Logger
}

func New(relay adapter.RelayAdapter, build models.AppBuildInfo, log *logger.Logger) (*TUI, error) {
	if relay == nil {
		return nil, errNoRelay
	}
	return &TUI{relay: relay, build: build, logger: log}, nil
}

// Run shows the dashboard until the operator quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan tea.Msg, 64)
	go streamEvents(ctx, t.relay, msgs, reconnectDelay, t.logger)

	model := newDashboardModel(ctx, t.relay, msgs, t.build)
	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if runErr != nil {
		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return runErr
	}

	if _, ok := finalModel.(dashboardModel); !ok {
		return tea.ErrProgramKilled
	}
	return nil
}
