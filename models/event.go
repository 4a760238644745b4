package models

import (
	"time"
)

// EventType tags the variant carried by a [LifecycleEvent].
type EventType string

const (
	EventTypeQR            EventType = "qr"
	EventTypeReady         EventType = "ready"
	EventTypeAuthenticated EventType = "authenticated"
	EventTypeAuthFailure   EventType = "auth_failure"
	EventTypeDisconnected  EventType = "disconnected"
	EventTypeMessage       EventType = "message"
	EventTypeBotMessage    EventType = "bot_message"
)

// LogoutReason is the disconnect reason reported by the transport when the
// remembered session has been invalidated. Compared case-insensitively.
const LogoutReason = "LOGOUT"

// BroadcastAddress is the pseudo-sender used by the chat network for status
// updates. Messages from it are never answered.
const BroadcastAddress = "status@broadcast"

// Valid reports whether t is one of the known event variants.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeQR, EventTypeReady, EventTypeAuthenticated, EventTypeAuthFailure,
		EventTypeDisconnected, EventTypeMessage, EventTypeBotMessage:
		return true
	default:
		return false
	}
}

func (t EventType) String() string {
	return string(t)
}

// LifecycleEvent is a discrete occurrence relayed to subscribers. Only the
// fields relevant to Type are populated; the JSON form mirrors the payloads
// pushed to the dashboard ({"type":"qr","qr":"..."} and so on).
type LifecycleEvent struct {
	// ID uniquely identifies the event within the process lifetime.
	ID string `json:"id,omitempty"`

	// Type selects the variant.
	Type EventType `json:"type"`

	// Timestamp is the moment the event was produced by this process.
	Timestamp time.Time `json:"ts"`

	// QR is the pairing payload of a qr event.
	QR string `json:"qr,omitempty"`

	// Message is the description of an auth_failure event.
	Message string `json:"message,omitempty"`

	// Reason is the cause of a disconnected event.
	Reason string `json:"reason,omitempty"`

	// From is the sender address of a message event.
	From string `json:"from,omitempty"`

	// To is the recipient address of a bot_message event.
	To string `json:"to,omitempty"`

	// Body is the text of a message or bot_message event.
	Body string `json:"body,omitempty"`

	// MessageTimestamp is the transport's unix timestamp of a message event.
	MessageTimestamp int64 `json:"timestamp,omitempty"`
}

// QREvent builds a qr event.
func QREvent(payload string) LifecycleEvent {
	return LifecycleEvent{Type: EventTypeQR, QR: payload}
}

// ReadyEvent builds a ready event.
func ReadyEvent() LifecycleEvent {
	return LifecycleEvent{Type: EventTypeReady}
}

// AuthenticatedEvent builds an authenticated event.
func AuthenticatedEvent() LifecycleEvent {
	return LifecycleEvent{Type: EventTypeAuthenticated}
}

// AuthFailureEvent builds an auth_failure event.
func AuthFailureEvent(message string) LifecycleEvent {
	return LifecycleEvent{Type: EventTypeAuthFailure, Message: message}
}

// DisconnectedEvent builds a disconnected event.
func DisconnectedEvent(reason string) LifecycleEvent {
	return LifecycleEvent{Type: EventTypeDisconnected, Reason: reason}
}

// MessageEvent builds a message event for an inbound message.
func MessageEvent(msg InboundMessage) LifecycleEvent {
	return LifecycleEvent{
		Type:             EventTypeMessage,
		From:             msg.From,
		Body:             msg.Body,
		MessageTimestamp: msg.Timestamp,
	}
}

// BotMessageEvent builds a bot_message event describing a reply sent to to.
func BotMessageEvent(to, body string) LifecycleEvent {
	return LifecycleEvent{Type: EventTypeBotMessage, To: to, Body: body}
}

// InboundMessage extracts the inbound message carried by a message event.
func (e LifecycleEvent) InboundMessage() InboundMessage {
	return InboundMessage{From: e.From, Body: e.Body, Timestamp: e.MessageTimestamp}
}

// Subscriber is one listener of the event relay. Events is closed when the
// subscriber is removed.
type Subscriber struct {
	ID     string
	Events chan LifecycleEvent
}
