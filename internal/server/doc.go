// Package server runs the relay's HTTP listener.
//
// The listener is supervised with errgroup: it serves until the run context
// is cancelled, then shuts down gracefully within Server.ShutdownTimeout.
// Request contexts derive from the run context, so long-lived event streams
// end when shutdown begins.
package server
