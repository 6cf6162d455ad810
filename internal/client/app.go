package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/adapter"
	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/service"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/internal/workers"
)

// commitLogBuffer is the subscription buffer of the commit logger.
const commitLogBuffer = 16

type App struct {
	cfg *config.ClientConfig

	store     *store.DataStore
	transport adapter.StreamTransport
	services  *service.ClientServices
	stats     *workers.StatsMonitor

	db    *store.DB
	cache store.ModelCache

	logger *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp wires the client. The model cache is opened and migrated when a
// DSN is configured.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	dataStore := store.NewDataStore(log.ForComponent("store"))
	transport := adapter.NewHTTPStreamTransport(cfg.Adapter, log.ForComponent("transport"))
	stats := workers.NewStatsMonitor(cfg.Workers.StatsInterval, log.ForComponent("stats"))

	services, err := service.NewClientServices(cfg.Adapter, transport, dataStore, stats, log)
	if err != nil {
		return nil, fmt.Errorf("create client services: %w", err)
	}

	app := &App{
		cfg:       cfg,
		store:     dataStore,
		transport: transport,
		services:  services,
		stats:     stats,
		logger:    log,
	}

	if cfg.Storage.DB.DSN != "" {
		db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log.ForComponent("cache"))
		if err != nil {
			return nil, fmt.Errorf("open model cache: %w", err)
		}
		if err = db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate model cache: %w", err)
		}
		app.db = db
		app.cache = store.NewModelCacheRepository(db, log.ForComponent("cache"))
	}

	return app, nil
}

// Store is the client's data store.
func (a *App) Store() *store.DataStore {
	return a.store
}

// Services are the client's sync services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run restores the cache, subscribes the configured requests, starts
// communication and the workers, and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.restore(ctx); err != nil {
		a.logger.Err(err).Str("func", "*App.Run").Msg("failed to restore model cache, starting empty")
	}

	// after restore, so the restored state is not written back
	background := workers.NewWorkers(a.stats)
	if a.cache != nil {
		background.Add(workers.NewCachePersister(a.store, a.cache, a.logger.ForComponent("cache")))
	}
	healthURL, err := a.cfg.Adapter.HealthURL()
	if err != nil {
		return fmt.Errorf("health url: %w", err)
	}
	background.Add(workers.NewHealthPoller(
		a.transport,
		a.services.Connectivity,
		healthURL,
		a.cfg.Workers.HealthInterval,
		a.logger.ForComponent("health"),
	))

	commits, unsubscribe := a.store.Subscribe(commitLogBuffer)
	defer unsubscribe()

	subscriptions := make([]*service.ModelSubscription, 0, len(a.cfg.Subscriptions))
	defer func() {
		for _, sub := range subscriptions {
			sub.Close()
		}
	}()
	for _, simple := range a.cfg.Subscriptions {
		sub, err := a.services.Autoupdate.SimpleRequest(ctx, simple)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", simple.Collection, err)
		}
		subscriptions = append(subscriptions, sub)
	}

	var wg sync.WaitGroup
	wg.Go(func() { background.Run(ctx) })
	wg.Go(func() { a.logCommits(ctx, commits) })
	wg.Go(func() {
		if err := a.services.Communication.Run(ctx, a.services.Connectivity.Events()); err != nil && ctx.Err() == nil {
			a.logger.Err(err).Str("func", "*App.Run").Msg("communication stopped")
		}
	})

	a.services.Connectivity.Booted()
	a.logger.Info().Int("subscriptions", len(subscriptions)).Msg("client booted")

	<-ctx.Done()
	wg.Wait()

	a.logger.Info().Msg("client stopped")
	return nil
}

func (a *App) restore(ctx context.Context) error {
	if a.cache == nil {
		return nil
	}

	records, err := a.cache.LoadModels(ctx)
	if err != nil {
		return err
	}
	if err = a.services.Autoupdate.Restore(ctx, records); err != nil {
		return err
	}

	a.logger.Info().Int("models", len(records)).Msg("model cache restored")
	return nil
}

// logCommits logs every commit received on events. Subscribing happens
// before the goroutine starts, so no commit after boot is missed.
func (a *App) logCommits(ctx context.Context, events <-chan store.CommitEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			a.logger.Info().
				Any("changed", event.Changed).
				Any("deleted", event.Deleted).
				Msg("data store updated")
		}
	}
}

func (a *App) close() {
	a.services.Connectivity.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Err(err).Str("func", "*App.close").Msg("failed to close model cache")
		}
	}
}
