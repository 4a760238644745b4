package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ClientApp holds dashboard application settings derived from the shared
// structured config.
type ClientApp struct {
	// ControlTokenKey signs bearer tokens for the control endpoints.
	// Empty sends no Authorization header.
	ControlTokenKey string
	// ControlTokenIssuer is the "iss" claim of minted tokens.
	ControlTokenIssuer string
	// ControlTokenDuration is the lifetime of minted tokens.
	ControlTokenDuration time.Duration
}

// ClientAdapter holds network settings used by the dashboard transport layer.
type ClientAdapter struct {
	// RelayAddress is the relay service base URL.
	RelayAddress string
	// RequestTimeout is the default timeout for control requests.
	RequestTimeout time.Duration
}

// ClientConfig is the top-level dashboard configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains token settings.
	App ClientApp
	// Adapter contains the relay address and timeouts.
	Adapter ClientAdapter
}

// GetClientConfig builds and validates a dashboard-specific config view from
// the merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	relayAddress := cfg.Adapter.RelayAddress
	if relayAddress == "" {
		relayAddress = "http://127.0.0.1:" + strconv.Itoa(cfg.Port)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			ControlTokenKey:      cfg.App.ControlTokenKey,
			ControlTokenIssuer:   cfg.App.ControlTokenIssuer,
			ControlTokenDuration: cfg.App.ControlTokenDuration,
		},
		Adapter: ClientAdapter{
			RelayAddress:   relayAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
	}

	return clientCfg, clientCfg.validate()
}
