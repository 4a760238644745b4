// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllGroups(t *testing.T) {
	t.Setenv("WA_PORT", "3010")
	t.Setenv("APP_CLIENT_ID", "bot02")
	t.Setenv("APP_CONTROL_TOKEN_KEY", "secret")
	t.Setenv("STORAGE_SESSION_ROOT", "/var/lib/relay")
	t.Setenv("STORAGE_DB_DSN", "journal.db")
	t.Setenv("SERVER_STATIC_DIR", "assets")
	t.Setenv("ADAPTER_ANSWER_ADDRESS", "http://answers:8000")
	t.Setenv("ADAPTER_TRANSPORT_URL", "ws://bridge:3002/bridge")
	t.Setenv("WORKERS_ERASE_INTERVAL", "250ms")
	t.Setenv("WORKERS_INIT_MAX_ATTEMPTS", "3")

	var cfg StructuredConfig
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, 3010, cfg.Port)
	assert.Equal(t, "bot02", cfg.App.ClientID)
	assert.Equal(t, "secret", cfg.App.ControlTokenKey)
	assert.Equal(t, "/var/lib/relay", cfg.Storage.Session.Root)
	assert.Equal(t, "journal.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "assets", cfg.Server.StaticDir)
	assert.Equal(t, "http://answers:8000", cfg.Adapter.AnswerAddress)
	assert.Equal(t, "ws://bridge:3002/bridge", cfg.Adapter.TransportURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Workers.EraseInterval)
	assert.Equal(t, 3, cfg.Workers.InitMaxAttempts)
}

func TestParseEnv_InvalidPort(t *testing.T) {
	t.Setenv("WA_PORT", "not-a-number")

	var cfg StructuredConfig
	assert.Error(t, parseEnv(&cfg))
}
