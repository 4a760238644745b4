// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"net"
	"os"
	"strconv"
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging built-in defaults,
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity, control-surface security and versioning settings.
	App App `envPrefix:"APP_"`

	// Storage holds the session directory root and the event journal DSN.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listener and static asset settings.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds addresses and timeouts of external collaborators.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the lifecycle controller's delays and retry policies.
	Workers Workers `envPrefix:"WORKERS_"`

	// Port is the listening port of the HTTP endpoints.
	// Env: WA_PORT
	Port int `env:"WA_PORT"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level values.
type App struct {
	// ClientID namespaces the on-disk credentials of the chat client.
	// Env: APP_CLIENT_ID
	ClientID string `env:"CLIENT_ID"`

	// ControlTokenKey is the HMAC key used to verify bearer tokens on the
	// control endpoints. Empty disables control-surface authentication.
	// Env: APP_CONTROL_TOKEN_KEY
	ControlTokenKey string `env:"CONTROL_TOKEN_KEY"`

	// ControlTokenIssuer is the expected "iss" claim of control tokens.
	// Env: APP_CONTROL_TOKEN_ISSUER
	ControlTokenIssuer string `env:"CONTROL_TOKEN_ISSUER"`

	// ControlTokenDuration is the lifetime of tokens minted by the dashboard.
	// Env: APP_CONTROL_TOKEN_DURATION
	ControlTokenDuration time.Duration `env:"CONTROL_TOKEN_DURATION"`

	// Version is exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogLevel is the minimum zerolog level ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Storage groups the persistence settings.
type Storage struct {
	// Session holds the credential directory settings.
	Session Session `envPrefix:"SESSION_"`

	// DB holds the event journal database settings.
	DB DB `envPrefix:"DB_"`
}

// Session holds the durable session store settings.
type Session struct {
	// Root is the directory under which session-{client id} lives.
	// Env: STORAGE_SESSION_ROOT
	Root string `env:"ROOT"`
}

// DB holds the event journal connection settings.
type DB struct {
	// DSN is the SQLite database file (e.g. "wa-relay.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds network and timeout settings for the inbound HTTP layer.
type Server struct {
	// Host is the interface to bind; empty binds all interfaces.
	// Env: SERVER_HOST
	Host string `env:"HOST"`

	// RequestTimeout bounds reading request headers. The event stream is
	// long-lived, so no write timeout is applied.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// StaticDir holds the dashboard assets served at "/".
	// Env: SERVER_STATIC_DIR
	StaticDir string `env:"STATIC_DIR"`
}

// Adapter holds configuration for external collaborators.
type Adapter struct {
	// AnswerAddress is the base URL of the answer-generation service.
	// Env: ADAPTER_ANSWER_ADDRESS
	AnswerAddress string `env:"ANSWER_ADDRESS"`

	// AnswerTimeout bounds a single answer-generation request.
	// Env: ADAPTER_ANSWER_TIMEOUT
	AnswerTimeout time.Duration `env:"ANSWER_TIMEOUT"`

	// TransportURL is the websocket endpoint of the chat transport bridge.
	// Env: ADAPTER_TRANSPORT_URL
	TransportURL string `env:"TRANSPORT_URL"`

	// TransportTimeout bounds a single transport command (initialize included).
	// Env: ADAPTER_TRANSPORT_TIMEOUT
	TransportTimeout time.Duration `env:"TRANSPORT_TIMEOUT"`

	// RelayAddress is the base URL of the relay service, used by the
	// dashboard client. Derived from the port when empty.
	// Env: ADAPTER_RELAY_ADDRESS
	RelayAddress string `env:"RELAY_ADDRESS"`

	// RequestTimeout bounds dashboard control requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds the lifecycle controller's timing and retry settings.
type Workers struct {
	// InitRetryInterval is the pause before retrying a failed initialize.
	// Env: WORKERS_INIT_RETRY_INTERVAL
	InitRetryInterval time.Duration `env:"INIT_RETRY_INTERVAL"`

	// InitMaxAttempts caps initialize attempts per creation; 0 is unbounded.
	// Env: WORKERS_INIT_MAX_ATTEMPTS
	InitMaxAttempts int `env:"INIT_MAX_ATTEMPTS"`

	// RecreateDelay is the pause between disconnect cleanup and recreation.
	// Env: WORKERS_RECREATE_DELAY
	RecreateDelay time.Duration `env:"RECREATE_DELAY"`

	// SettleDelay lets the transport release file locks before erasure.
	// Env: WORKERS_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`

	// EraseAttempts is the total number of session directory removal attempts.
	// Env: WORKERS_ERASE_ATTEMPTS
	EraseAttempts int `env:"ERASE_ATTEMPTS"`

	// EraseInterval is the pause between removal attempts.
	// Env: WORKERS_ERASE_INTERVAL
	EraseInterval time.Duration `env:"ERASE_INTERVAL"`

	// DestroyTimeout bounds destroying a client instance; 0 waits forever.
	// Env: WORKERS_DESTROY_TIMEOUT
	DestroyTimeout time.Duration `env:"DESTROY_TIMEOUT"`

	// MaxConcurrentReplies bounds in-flight answer requests; 0 is unbounded.
	// Env: WORKERS_MAX_CONCURRENT_REPLIES
	MaxConcurrentReplies int `env:"MAX_CONCURRENT_REPLIES"`

	// EventBuffer is the per-subscriber event channel capacity.
	// Env: WORKERS_EVENT_BUFFER
	EventBuffer int `env:"EVENT_BUFFER"`
}

// HTTPAddress returns the listen address built from Server.Host and Port.
func (cfg *StructuredConfig) HTTPAddress() string {
	return net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Port))
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources, reading flags from os.Args.
func GetStructuredConfig() (*StructuredConfig, error) {
	return Load(os.Args[1:])
}

// Load is GetStructuredConfig with explicit command-line arguments.
func Load(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
