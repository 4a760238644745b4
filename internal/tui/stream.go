package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// streamEvents keeps the relay event stream open, reconnecting after delay
// whenever it ends, and forwards events and connection changes to out until
// ctx is done. out is closed on return.
func streamEvents(ctx context.Context, relay adapter.RelayAdapter, out chan<- tea.Msg, delay time.Duration, log *logger.Logger) {
	defer close(out)

	send := func(msg tea.Msg) bool {
		select {
		case out <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		connected := false
		err := relay.Subscribe(ctx, func(e models.LifecycleEvent) {
			if !connected {
				connected = true
				send(streamStateMsg{connected: true})
			}
			send(eventMsg{event: e})
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("func", "streamEvents").Msg("event stream ended")
		}
		if !send(streamStateMsg{connected: false, err: err}) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// waitForStream turns the next stream message into a tea message. A closed
// stream yields nil, which ends the chain.
func waitForStream(msgs <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-msgs
		if !ok {
			return nil
		}
		return msg
	}
}
