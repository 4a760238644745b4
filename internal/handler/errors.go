// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when the configuration
// gives the HTTP surface no port to listen on. It is fatal at startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
