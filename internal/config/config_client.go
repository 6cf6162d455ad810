package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/MKhiriev/go-assembly-sync/models"
)

// Client defaults applied when no source sets a value.
const (
	DefaultAutoupdatePath = "/system/autoupdate"
	DefaultHealthPath     = "/system/health"
	DefaultHealthInterval = 5 * time.Second
	DefaultStatsInterval  = time.Minute
)

// ClientApp holds client application values.
type ClientApp struct {
	Version string
}

// ClientAdapter holds the streaming transport settings.
type ClientAdapter struct {
	HTTPAddress    string
	AutoupdatePath string
	HealthPath     string
	RequestTimeout time.Duration
	AuthToken      string
}

// AutoupdateURL joins the server address and the autoupdate path.
func (a ClientAdapter) AutoupdateURL() (string, error) {
	return url.JoinPath(a.HTTPAddress, a.AutoupdatePath)
}

// HealthURL joins the server address and the health path.
func (a ClientAdapter) HealthURL() (string, error) {
	return url.JoinPath(a.HTTPAddress, a.HealthPath)
}

// ClientDB holds the model cache location. An empty DSN disables the cache.
type ClientDB struct {
	DSN string
}

type ClientStorage struct {
	DB ClientDB
}

type ClientWorkers struct {
	HealthInterval time.Duration
	StatsInterval  time.Duration
}

// ClientConfig is the configuration of the sync client.
type ClientConfig struct {
	App           ClientApp
	Adapter       ClientAdapter
	Storage       ClientStorage
	Workers       ClientWorkers
	Subscriptions []models.SimplifiedModelRequest
}

// GetClientConfig loads the structured config and projects it onto the
// client settings, applying defaults and validation.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	subscriptions, err := ParseSubscriptions(cfg.Subscriptions)
	if err != nil {
		return nil, err
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			AutoupdatePath: valueOr(cfg.Adapter.AutoupdatePath, DefaultAutoupdatePath),
			HealthPath:     valueOr(cfg.Adapter.HealthPath, DefaultHealthPath),
			RequestTimeout: cfg.Adapter.RequestTimeout,
			AuthToken:      cfg.Adapter.AuthToken,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			HealthInterval: valueOr(cfg.Workers.HealthInterval, DefaultHealthInterval),
			StatsInterval:  valueOr(cfg.Workers.StatsInterval, DefaultStatsInterval),
		},
		Subscriptions: subscriptions,
	}

	return clientCfg, clientCfg.validate()
}

func valueOr[T comparable](value, fallback T) T {
	var zero T
	if value == zero {
		return fallback
	}
	return value
}
