package service

import (
	"context"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Publisher relays lifecycle events to subscribers.
type Publisher interface {
	// Publish stamps and relays event, returning the stamped copy.
	Publish(event models.LifecycleEvent) models.LifecycleEvent
}

// SessionStore is the controller's view of the credential directory.
type SessionStore interface {
	Dir() string
	Exists() bool
	// Erase removes the directory, retrying on contention.
	Erase(ctx context.Context) error
}

// MessageResponder answers inbound messages. Respond never panics and never
// returns an error; failures are logged.
type MessageResponder interface {
	Respond(ctx context.Context, client adapter.ChatSender, msg models.InboundMessage)
}

// LifecycleService is the operator control surface of the controller.
type LifecycleService interface {
	// Restart tears the client down and initiates recreation. Always nil.
	Restart(ctx context.Context) error
	// Logout tears the client down and erases credentials. On success
	// recreation is initiated; on failure the erase error is returned.
	Logout(ctx context.Context) error
	// Status returns a snapshot of the controller.
	Status() models.StatusResponse
}

// EventStream lets transports subscribe to relayed events.
type EventStream interface {
	Subscribe(subscriberID string) *models.Subscriber
	Unsubscribe(subscriberID string)
	SubscriberCount() int
}

// HistoryService reads the event journal.
type HistoryService interface {
	History(ctx context.Context, req models.HistoryRequest) (models.HistoryResponse, error)
}

// AppInfoService reports build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
