package store

// Storages aggregates the persistence dependencies of the service layer.
type Storages struct {
	SessionStore *SessionStore
	EventJournal EventJournal
}

// NewStorages bundles the session store and the event journal.
func NewStorages(sessions *SessionStore, journal EventJournal) *Storages {
	return &Storages{
		SessionStore: sessions,
		EventJournal: journal,
	}
}
