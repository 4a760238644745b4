package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_DefaultsAreValid verifies that the built-in defaults alone pass
// validation and carry the documented values.
func TestBuild_DefaultsAreValid(t *testing.T) {
	cfg, err := newConfigBuilder().withDefaults().build()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "bot01", cfg.App.ClientID)
	assert.Equal(t, ".wwebjs_auth", cfg.Storage.Session.Root)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Adapter.AnswerAddress)
	assert.Equal(t, 1500*time.Millisecond, cfg.Workers.InitRetryInterval)
	assert.Equal(t, time.Second, cfg.Workers.RecreateDelay)
	assert.Equal(t, 1200*time.Millisecond, cfg.Workers.SettleDelay)
	assert.Equal(t, 10, cfg.Workers.EraseAttempts)
	assert.Equal(t, 400*time.Millisecond, cfg.Workers.EraseInterval)
	assert.Zero(t, cfg.Workers.InitMaxAttempts)
	assert.Zero(t, cfg.Workers.DestroyTimeout)
	assert.Zero(t, cfg.Workers.MaxConcurrentReplies)
}

// TestBuild_EmptyBuilderFailsValidation verifies that a config without any
// source is rejected.
func TestBuild_EmptyBuilderFailsValidation(t *testing.T) {
	_, err := newConfigBuilder().build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_LaterSourceOverrides verifies that non-zero fields of later
// sources win while zero fields keep earlier values.
func TestBuild_LaterSourceOverrides(t *testing.T) {
	b := newConfigBuilder().withDefaults()
	b.configs = append(b.configs,
		&StructuredConfig{Port: 4000, App: App{Version: "1.0.0"}},
		&StructuredConfig{Port: 5000},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "bot01", cfg.App.ClientID)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoPathIsNoop(t *testing.T) {
	b := newConfigBuilder().withDefaults().withJSON()
	assert.NoError(t, b.err)
	assert.Len(t, b.configs, 1)
}

func TestWithJSON_BadPathRecordsError(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/does/not/exist.json"})

	b.withJSON()
	assert.Error(t, b.err)
}

// ── Load ──────────────────────────────────────────────────────────────────────

// TestLoad_PriorityOrder verifies defaults < env < flags < json.
func TestLoad_PriorityOrder(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app": map[string]any{"version": "from-json"},
	})

	t.Setenv("WA_PORT", "4100")
	t.Setenv("APP_CLIENT_ID", "env-client")
	t.Setenv("APP_VERSION", "from-env")
	t.Setenv("STORAGE_SESSION_ROOT", "")

	cfg, err := Load([]string{"-client-id", "flag-client", "-c", path})
	require.NoError(t, err)

	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, "flag-client", cfg.App.ClientID)
	assert.Equal(t, "from-json", cfg.App.Version)
	assert.Equal(t, DefaultSessionRoot, cfg.Storage.Session.Root)
	assert.Equal(t, ":4100", cfg.HTTPAddress())
}

func TestLoad_InvalidFlag(t *testing.T) {
	_, err := Load([]string{"-unknown-flag"})
	assert.Error(t, err)
}
