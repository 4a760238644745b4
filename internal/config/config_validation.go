// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.ClientID == "" || strings.ContainsAny(cfg.App.ClientID, `/\`) {
		return fmt.Errorf("%w: client id %q", ErrInvalidAppConfigs, cfg.App.ClientID)
	}

	if cfg.Storage.Session.Root == "" {
		return fmt.Errorf("%w: empty session root", ErrInvalidStorageConfigs)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidServerConfigs, cfg.Port)
	}

	if cfg.Adapter.AnswerAddress == "" || cfg.Adapter.TransportURL == "" {
		return ErrInvalidAdapterConfigs
	}

	w := cfg.Workers
	if w.EraseAttempts < 1 || w.EraseInterval <= 0 || w.InitRetryInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}
	if w.InitMaxAttempts < 0 || w.MaxConcurrentReplies < 0 || w.RecreateDelay < 0 || w.SettleDelay < 0 || w.DestroyTimeout < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.RelayAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
