// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the abstractions over the relay's external
// collaborators.
//
//   - [ClientFactory] and [ChatClient] front the chat transport. The shipped
//     implementation talks to a bridge process over a websocket.
//   - [AnswerAdapter] fronts the answer-generation service (HTTP/REST).
//   - [RelayAdapter] is used by the operator dashboard to reach the relay's
//     own control surface and event stream.
//
// HTTP status codes are mapped to the sentinel values in errors.go by
// mapHTTPError so that callers can use [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-wa-relay/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// EventHandler receives the events of one chat client, in order, on the
// client's read goroutine. It must not block.
type EventHandler func(event models.LifecycleEvent)

// ClientOptions are passed to the transport when a client initializes.
type ClientOptions struct {
	// DeleteSessionOnLogout lets the transport erase credentials itself.
	// Always false: erasure belongs to the lifecycle controller.
	DeleteSessionOnLogout bool `json:"delete_session_on_logout"`
	// Headless runs the underlying browser without a window.
	Headless bool `json:"headless"`
	// TakeoverOnConflict reclaims the session when another device opens it.
	TakeoverOnConflict bool `json:"takeover_on_conflict"`
	// TakeoverTimeoutMs delays the takeover; 0 takes over immediately.
	TakeoverTimeoutMs int `json:"takeover_timeout_ms"`
}

// DefaultClientOptions returns the options every client is created with.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		DeleteSessionOnLogout: false,
		Headless:              true,
		TakeoverOnConflict:    true,
		TakeoverTimeoutMs:     0,
	}
}

// ChatSender is the messaging half of a chat client.
type ChatSender interface {
	// SendMessage delivers body to the chat addressed by to.
	SendMessage(ctx context.Context, to, body string) error
	// GetChat looks up the conversation metadata of chatID.
	GetChat(ctx context.Context, chatID string) (models.Chat, error)
}

// ChatClient is one instance of the chat transport bound to a session
// identity. An instance is initialized at most once and is unusable after
// Destroy.
type ChatClient interface {
	ChatSender

	// Initialize connects and authenticates, blocking until the transport
	// reports the outcome. Events flow to the handler from this point on.
	Initialize(ctx context.Context) error
	// Destroy releases the instance. Calling it again is a no-op.
	Destroy(ctx context.Context) error
}

// ClientFactory constructs chat clients. Construction performs no I/O;
// the handler is bound before Initialize can emit anything.
type ClientFactory interface {
	NewClient(identity models.SessionIdentity, opts ClientOptions, handler EventHandler) (ChatClient, error)
}

// AnswerAdapter asks the answer-generation service for a reply.
type AnswerAdapter interface {
	// Answer returns the generated reply text. A missing or blank reply is
	// reported as [ErrEmptyAnswer].
	Answer(ctx context.Context, req models.AnswerRequest) (string, error)
}

// RelayAdapter is the dashboard's view of the relay service.
type RelayAdapter interface {
	// Restart asks the relay to recreate the chat client.
	Restart(ctx context.Context) error
	// Logout asks the relay to log out and erase stored credentials.
	Logout(ctx context.Context) error
	// Status fetches the lifecycle controller snapshot.
	Status(ctx context.Context) (models.StatusResponse, error)
	// History fetches journaled events, newest first.
	History(ctx context.Context, req models.HistoryRequest) (models.HistoryResponse, error)
	// Subscribe streams live events to fn until ctx is done or the stream
	// ends.
	Subscribe(ctx context.Context, fn func(models.LifecycleEvent)) error
}
