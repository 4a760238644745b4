package adapter

import "errors"

// HTTP status errors produced by mapHTTPError.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
)

// Answer-generation errors.
var (
	// ErrEmptyAnswer is returned when the reply field is missing or blank.
	ErrEmptyAnswer = errors.New("empty answer")
	// ErrMalformedAnswer is returned when the reply body is not valid JSON.
	ErrMalformedAnswer = errors.New("malformed answer")
)

// Transport bridge errors.
var (
	// ErrTransportClosed is returned for commands issued on a connection
	// that has been closed, or that closes before the reply arrives.
	ErrTransportClosed = errors.New("transport connection closed")
	// ErrNotInitialized is returned for commands issued before Initialize.
	ErrNotInitialized = errors.New("client not initialized")
	// ErrCommandFailed is returned when the bridge reports a failed command.
	ErrCommandFailed = errors.New("transport command failed")
	// ErrInvalidAddress is returned for unusable adapter addresses.
	ErrInvalidAddress = errors.New("invalid address")
)
