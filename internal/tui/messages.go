package tui

import (
	"github.com/MKhiriev/go-wa-relay/models"
)

// eventMsg carries one live event from the relay stream.
type eventMsg struct {
	event models.LifecycleEvent
}

// streamStateMsg reports the event stream connecting or dropping.
type streamStateMsg struct {
	connected bool
	err       error
}

type statusLoadedMsg struct {
	status models.StatusResponse
	err    error
}

type historyLoadedMsg struct {
	events []models.LifecycleEvent
	err    error
}

type controlDoneMsg struct {
	action string
	err    error
}

type statusTickMsg struct{}

type copiedMsg struct {
	err error
}

type clearStatusMsg struct{}
