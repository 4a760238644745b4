package models

// InboundMessage is a conversational message received through the transport.
type InboundMessage struct {
	// From is the sender (chat) address, e.g. "5511999999999@c.us".
	From string `json:"from"`

	// Body is the message text.
	Body string `json:"body"`

	// Timestamp is the unix timestamp assigned by the chat network.
	Timestamp int64 `json:"timestamp"`
}

// IsBroadcast reports whether the message was sent by the status/broadcast
// pseudo-address.
func (m InboundMessage) IsBroadcast() bool {
	return m.From == BroadcastAddress
}

// Chat is the conversation metadata returned by a chat lookup.
type Chat struct {
	// ID is the chat address.
	ID string `json:"id"`

	// Name is the display name, if known.
	Name string `json:"name,omitempty"`

	// IsGroup reports whether the conversation has more than two parties.
	IsGroup bool `json:"is_group"`
}
