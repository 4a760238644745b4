package store

import (
	"context"

	"github.com/MKhiriev/go-wa-relay/models"
)

// EventJournal persists relayed lifecycle events for later inspection.
//
//go:generate mockgen -source=interfaces.go -destination=../mock/event_journal_mock.go -package=mock
type EventJournal interface {
	// Append stores event.
	Append(ctx context.Context, event models.LifecycleEvent) error
	// List returns the most recent events matching req, newest first.
	List(ctx context.Context, req models.HistoryRequest) ([]models.LifecycleEvent, error)
}
