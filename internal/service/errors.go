// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrVersionIsNotSpecified is returned when no application version is
	// configured for the version endpoint.
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	// ErrControllerClosed is returned by operations issued after Close.
	ErrControllerClosed = errors.New("lifecycle controller closed")

	// ErrSuperseded is reported when a client finished initializing after it
	// had already been replaced or torn down.
	ErrSuperseded = errors.New("client instance superseded")

	// ErrNoActiveClient is returned when a reply is ready but no client is
	// active to carry it.
	ErrNoActiveClient = errors.New("no active chat client")

	// ErrJournalDisabled is returned by History when no journal is wired.
	ErrJournalDisabled = errors.New("event journal disabled")

	// ErrInvalidEventType is returned for history filters naming an unknown
	// event type.
	ErrInvalidEventType = errors.New("invalid event type")
)
