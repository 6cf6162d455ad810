package workers

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

const commitBuffer = 64

// CachePersister mirrors every data store commit into the model cache.
type CachePersister struct {
	source CommitSource
	cache  store.ModelCache

	events      <-chan store.CommitEvent
	unsubscribe func()

	logger *logger.Logger
}

// NewCachePersister subscribes to source right away, so commits made
// between construction and Run are not missed.
func NewCachePersister(source CommitSource, cache store.ModelCache, log *logger.Logger) *CachePersister {
	events, unsubscribe := source.Subscribe(commitBuffer)
	return &CachePersister{
		source:      source,
		cache:       cache,
		events:      events,
		unsubscribe: unsubscribe,
		logger:      log,
	}
}

func (p *CachePersister) Run(ctx context.Context) {
	defer p.unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.events:
			if !ok {
				return
			}
			if err := p.persist(ctx, event); err != nil {
				p.logger.Error().Err(err).Str("func", "CachePersister.Run").Msg("failed to persist commit")
			}
		}
	}
}

func (p *CachePersister) persist(ctx context.Context, event store.CommitEvent) error {
	for collection, ids := range event.Deleted {
		if err := p.cache.DeleteModels(ctx, collection, ids...); err != nil {
			return err
		}
	}

	var records []models.ModelRecord
	for collection, ids := range event.Changed {
		for _, id := range ids {
			model, ok := p.source.Get(collection, id)
			if !ok {
				// removed by a later commit that is still queued
				continue
			}
			data, err := json.Marshal(model)
			if err != nil {
				return err
			}
			records = append(records, models.ModelRecord{Collection: collection, ID: id, Data: data})
		}
	}
	if len(records) == 0 {
		return nil
	}
	return p.cache.SaveModels(ctx, records...)
}
