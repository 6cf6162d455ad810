// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container shared by both
// binaries. It is populated by merging values from environment variables,
// command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token parameters and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings: the SQLite model cache of the
	// client or the Postgres datastore of the server.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address and timings of the reference server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the settings of the client's streaming transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the intervals of the client's background workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// Subscriptions lists the model requests the client opens at boot, in
	// the form "collection:1,2,3" or "collection:1,2,3@fieldset".
	// Env: SUBSCRIPTIONS (separated by ';')
	Subscriptions []string `env:"SUBSCRIPTIONS" envSeparator:";"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for the storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level values.
type App struct {
	// TokenSignKey is the secret key used to sign and verify bearer tokens.
	// An empty key disables authentication on the reference server.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long tokens issued by the dev tooling stay valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is the version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timing settings of the reference server.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on, in
	// "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds header reads and every datastore query.
	// Streaming responses are not bounded by it.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// PollInterval is how often an open autoupdate stream re-resolves its
	// request against the datastore.
	// Env: SERVER_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is the connection string: a file path for the client's SQLite
	// cache, a postgres:// URL for the server.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the settings of the client's outbound transport.
type Adapter struct {
	// HTTPAddress is the base URL of the autoupdate server
	// (e.g. "http://localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// AutoupdatePath is the path of the streaming endpoint.
	// Env: ADAPTER_AUTOUPDATE_PATH
	AutoupdatePath string `env:"AUTOUPDATE_PATH"`

	// HealthPath is the path of the health endpoint.
	// Env: ADAPTER_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`

	// RequestTimeout bounds health checks. Streams are not bounded by it.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthToken is sent as a bearer token on every stream request.
	// Env: ADAPTER_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Workers holds the intervals of the client's background workers.
type Workers struct {
	// HealthInterval is how often the health URL is polled while offline.
	// Env: WORKERS_HEALTH_INTERVAL
	HealthInterval time.Duration `env:"HEALTH_INTERVAL"`

	// StatsInterval is how often throughput statistics are logged.
	// Env: WORKERS_STATS_INTERVAL
	StatsInterval time.Duration `env:"STATS_INTERVAL"`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources. Command-line flags are read from os.Args.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
