// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is used when no source sets SERVER_POLL_INTERVAL.
	DefaultPollInterval = time.Second

	DefaultTokenDuration = 24 * time.Hour
)

// ServerConfig is the configuration of the reference autoupdate server.
type ServerConfig struct {
	App     App
	Server  Server
	Storage Storage
}

// AuthEnabled reports whether bearer tokens are required.
func (c *ServerConfig) AuthEnabled() bool {
	return c.App.TokenSignKey != ""
}

// GetServerConfig loads the structured config and projects it onto the
// server settings.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newServerConfig(cfg)
}

func newServerConfig(cfg *StructuredConfig) (*ServerConfig, error) {
	serverCfg := &ServerConfig{
		App:     cfg.App,
		Server:  cfg.Server,
		Storage: cfg.Storage,
	}
	serverCfg.Server.PollInterval = valueOr(serverCfg.Server.PollInterval, DefaultPollInterval)
	serverCfg.App.TokenDuration = valueOr(serverCfg.App.TokenDuration, DefaultTokenDuration)

	return serverCfg, serverCfg.validate()
}
