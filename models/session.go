package models

import (
	"fmt"
	"path/filepath"
)

// sessionDirPrefix is prepended to the client identifier to form the name of
// the directory that holds the transport's credential artifacts.
const sessionDirPrefix = "session-"

// SessionIdentity names the single chat-client identity managed by the
// process and the root directory under which its credentials live.
//
// It is created once at startup and never mutated.
type SessionIdentity struct {
	// ClientID namespaces on-disk credentials (e.g. "bot01").
	ClientID string `json:"client_id"`

	// Root is the directory holding every session directory
	// (e.g. ".wwebjs_auth").
	Root string `json:"root"`
}

// NewSessionIdentity returns a [SessionIdentity] whose Root is cleaned.
func NewSessionIdentity(clientID, root string) SessionIdentity {
	return SessionIdentity{ClientID: clientID, Root: filepath.Clean(root)}
}

// DirName returns the base name of the session directory: session-{ClientID}.
func (s SessionIdentity) DirName() string {
	return sessionDirPrefix + s.ClientID
}

// Dir returns the full path of the session directory: {Root}/session-{ClientID}.
func (s SessionIdentity) Dir() string {
	return filepath.Join(s.Root, s.DirName())
}

// String implements fmt.Stringer.
func (s SessionIdentity) String() string {
	return fmt.Sprintf("%s@%s", s.ClientID, s.Root)
}
