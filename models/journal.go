package models

// HistoryRequest filters the event journal.
type HistoryRequest struct {
	// Types restricts results to the listed event types. Empty means all.
	Types []EventType `json:"types,omitempty"`

	// Limit caps the number of returned entries (most recent first).
	Limit uint64 `json:"limit"`
}

// HistoryResponse is returned by the history endpoint.
type HistoryResponse struct {
	// Events are the journal entries, most recent first.
	Events []LifecycleEvent `json:"events"`

	// Length is len(Events).
	Length int `json:"length"`
}
