package server

import "context"

// Server defines the lifecycle contract for the transport servers managed
// by this package.
type Server interface {
	// Run serves requests until ctx is cancelled or the listener fails.
	// A clean shutdown returns nil.
	Run(ctx context.Context) error
}
