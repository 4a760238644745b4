package client

import "errors"

// ErrIncompleteApp is returned by NewApp when a dependency is missing.
var ErrIncompleteApp = errors.New("client app requires a relay adapter and a UI")
