package models

import "time"

// ControlResponse is the body returned by the restart and logout endpoints.
type ControlResponse struct {
	// OK reports whether the requested action succeeded (or was initiated).
	OK bool `json:"ok"`

	// Error carries the underlying failure description when OK is false.
	Error string `json:"error,omitempty"`
}

// AnswerRequest is sent to the answer-generation collaborator.
type AnswerRequest struct {
	// Message is the inbound message text.
	Message string `json:"message"`

	// SessionID keeps conversation continuity; the sender address is used.
	SessionID string `json:"session_id"`
}

// AnswerResponse is the reply returned by the answer-generation collaborator.
// Only Reply is consumed; the remaining fields are passed through for
// diagnostics.
type AnswerResponse struct {
	// Reply is the generated answer text.
	Reply *string `json:"resposta"`

	// SessionID echoes the conversation key.
	SessionID string `json:"session_id,omitempty"`
}

// StatusResponse is a snapshot of the lifecycle controller.
type StatusResponse struct {
	// State is the current controller state (e.g. "active").
	State string `json:"state"`

	// Initializing mirrors the initialization guard flag.
	Initializing bool `json:"initializing"`

	// Generation counts constructed client instances.
	Generation uint64 `json:"generation"`

	// SessionDir is the path of the credential directory.
	SessionDir string `json:"session_dir"`

	// CredentialsPresent reports whether the session directory exists.
	CredentialsPresent bool `json:"credentials_present"`

	// LastTransition is the time the state last changed.
	LastTransition time.Time `json:"last_transition"`

	// Subscribers is the number of live event-stream listeners.
	Subscribers int `json:"subscribers"`
}
