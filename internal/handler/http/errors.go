// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when a
	// control request carries no "Authorization" header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is not of the
	// form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrInvalidLimit is returned for a history limit that is not a positive
	// integer.
	ErrInvalidLimit = errors.New("invalid `limit` query parameter")

	// ErrStreamingUnsupported is returned when the response writer cannot
	// flush, which the event stream requires.
	ErrStreamingUnsupported = errors.New("streaming not supported")
)
