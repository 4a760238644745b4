package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app":     map[string]any{"client_id": "json-bot", "control_token_duration": "30m"},
		"storage": map[string]any{"session": map[string]any{"root": "/data"}},
		"server":  map[string]any{"port": 3200, "request_timeout": "5s"},
		"workers": map[string]any{"erase_attempts": 4, "erase_interval": "100ms", "settle_delay": 1000000},
	})

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "json-bot", cfg.App.ClientID)
	assert.Equal(t, 30*time.Minute, cfg.App.ControlTokenDuration)
	assert.Equal(t, "/data", cfg.Storage.Session.Root)
	assert.Equal(t, 3200, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 4, cfg.Workers.EraseAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Workers.EraseInterval)
	assert.Equal(t, time.Millisecond, cfg.Workers.SettleDelay)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, d.UnmarshalJSON([]byte(`"forever"`)))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(b))
}
