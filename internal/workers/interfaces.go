// Package workers runs the relay's long-lived background loops under one
// supervisor: the lifecycle controller, the event journal writer and the
// credentials watcher.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is cancelled or the
// worker fails; a clean stop returns nil.
type Worker interface {
	Run(ctx context.Context) error
}

// Lifecycle is the part of the controller the supervisor drives.
type Lifecycle interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// JournalWriter copies relayed events into the journal until ctx is done.
type JournalWriter interface {
	Run(ctx context.Context) error
}

// SessionWatcher reports changes in the presence of stored credentials.
type SessionWatcher interface {
	Watch(ctx context.Context, onChange func(present bool)) error
}
