// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/adapter"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// AutoupdateEndpoint is the endpoint name model requests are sent to.
const AutoupdateEndpoint = "autoupdate"

type activeRequest struct {
	id      int
	request models.ModelRequest

	// guarded by AutoupdateService.mu
	closeFn    CloseFunc
	connecting bool
}

// ModelSubscription is the handle of one active model request.
type ModelSubscription struct {
	ID      int
	Request models.ModelRequest

	service *AutoupdateService
	once    sync.Once
}

// Close unregisters the request and closes its stream. Once Close returns,
// no message of the request reaches the data store.
func (s *ModelSubscription) Close() {
	s.once.Do(func() {
		s.service.closeRequest(s.ID)
	})
}

// AutoupdateService registers model requests, opens a stream for each of
// them and reconciles the received deltas into the data store. Passes are
// serialized by a FIFO lock and each pass is one update slot commit.
type AutoupdateService struct {
	communicator Communicator
	store        ModelStore
	mapper       *CollectionMapper
	builder      RequestBuilder
	stats        StatsRecorder

	lock *utils.Mutex
	ids  *utils.IDGenerator

	mu       sync.Mutex
	requests map[int]*activeRequest

	logger *logger.Logger
}

func NewAutoupdateService(
	communicator Communicator,
	store ModelStore,
	mapper *CollectionMapper,
	builder RequestBuilder,
	stats StatsRecorder,
	log *logger.Logger,
) *AutoupdateService {
	if stats == nil {
		stats = nopStats{}
	}

	s := &AutoupdateService{
		communicator: communicator,
		store:        store,
		mapper:       mapper,
		builder:      builder,
		stats:        stats,
		lock:         utils.NewMutex(),
		ids:          utils.NewRequestIDGenerator(),
		requests:     make(map[int]*activeRequest),
		logger:       log,
	}
	communicator.OnStartCommunication(func(ctx context.Context) {
		if err := s.StartAllAutoupdates(ctx); err != nil {
			s.logger.Error().Err(err).Str("func", "AutoupdateService.StartAllAutoupdates").Msg("failed to start autoupdates")
		}
	})
	return s
}

// SimpleRequest builds the full request and delegates to Request.
func (s *AutoupdateService) SimpleRequest(ctx context.Context, simple models.SimplifiedModelRequest) (*ModelSubscription, error) {
	req, err := s.builder.Build(simple)
	if err != nil {
		return nil, fmt.Errorf("build model request for %s: %w", simple.Collection, err)
	}
	return s.Request(ctx, req)
}

// Request registers req under a fresh id and opens its stream. Transport
// failures are logged; the subscription is returned regardless and the
// stream is retried on the next start of communication.
func (s *AutoupdateService) Request(ctx context.Context, req models.ModelRequest) (*ModelSubscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.ids.Next()
	if err != nil {
		return nil, err
	}

	active := &activeRequest{id: id, request: req, connecting: true}
	s.mu.Lock()
	s.requests[id] = active
	s.mu.Unlock()

	if err = s.connect(ctx, active); err != nil {
		if errors.Is(err, adapter.ErrEndpointNotFound) {
			s.forget(id)
			return nil, err
		}
		s.logger.Error().Err(err).
			Str("func", "AutoupdateService.Request").
			Int("request_id", id).
			Str("collection", req.Collection).
			Msg("failed to open autoupdate stream")
	}

	s.logger.Debug().
		Str("func", "AutoupdateService.Request").
		Int("request_id", id).
		Str("collection", req.Collection).
		Ints("ids", req.IDs).
		Msg("model request registered")

	return &ModelSubscription{ID: id, Request: req, service: s}, nil
}

// StartAllAutoupdates connects every active request that has no stream
// container. Requests with a container are re-established by the
// communication manager itself.
func (s *AutoupdateService) StartAllAutoupdates(ctx context.Context) error {
	s.mu.Lock()
	var pending []*activeRequest
	for _, active := range s.requests {
		if active.closeFn == nil && !active.connecting {
			active.connecting = true
			pending = append(pending, active)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, active := range pending {
		if err := s.connect(ctx, active); err != nil {
			errs = append(errs, fmt.Errorf("request %d: %w", active.id, err))
		}
	}
	return errors.Join(errs...)
}

// ActiveRequests returns the ids of the registered requests, sorted.
func (s *AutoupdateService) ActiveRequests() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *AutoupdateService) connect(ctx context.Context, active *activeRequest) error {
	body := []models.ModelRequest{active.request}
	closeFn, err := s.communicator.Connect(ctx, AutoupdateEndpoint, s.messageHandler(active.id),
		func() any { return body }, nil)

	s.mu.Lock()
	active.connecting = false
	_, stillActive := s.requests[active.id]
	if stillActive {
		active.closeFn = closeFn
	}
	s.mu.Unlock()

	if !stillActive && closeFn != nil {
		closeFn()
	}
	return err
}

func (s *AutoupdateService) closeRequest(id int) {
	// holding the lock, no pass for this request can be running or start
	unlock, _ := s.lock.Lock(context.Background())
	closeFn := s.forget(id)
	unlock()

	if closeFn != nil {
		closeFn()
	}
	s.ids.Release(id)

	s.logger.Debug().Str("func", "AutoupdateService.closeRequest").Int("request_id", id).Msg("model request closed")
}

func (s *AutoupdateService) forget(id int) CloseFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.requests[id]
	if !ok {
		return nil
	}
	delete(s.requests, id)
	return active.closeFn
}

func (s *AutoupdateService) isActive(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.requests[id]
	return ok
}

func (s *AutoupdateService) messageHandler(requestID int) MessageHandler {
	return func(ctx context.Context, message json.RawMessage) {
		s.stats.ObserveMessage()

		log := s.logger.With().Str("func", "AutoupdateService.messageHandler").Int("request_id", requestID).Logger()

		var wire models.AutoupdateModelData
		if err := json.Unmarshal(message, &wire); err != nil {
			log.Error().Err(err).Msg("failed to decode autoupdate message")
			return
		}
		data, err := wire.ToModelData()
		if err != nil {
			log.Error().Err(err).Msg("failed to convert autoupdate message")
			return
		}

		err = s.handle(ctx, data, func() bool { return s.isActive(requestID) })
		if err != nil {
			log.Error().Err(err).Msg("failed to apply autoupdate message")
		}
	}
}

// HandleAutoupdate reconciles one delta into the data store. Deletions of
// all collections are applied before all additions, and the whole delta
// becomes visible as a single commit. Models of unregistered collections
// are logged and skipped.
func (s *AutoupdateService) HandleAutoupdate(ctx context.Context, data models.ModelData) error {
	return s.handle(ctx, data, nil)
}

func (s *AutoupdateService) handle(ctx context.Context, data models.ModelData, active func() bool) error {
	unlock, err := s.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if active != nil && !active() {
		return nil
	}

	started := time.Now()
	changed, deleted, err := s.reconcile(ctx, data)
	if err != nil {
		return err
	}
	s.stats.ObserveReconciliation(time.Since(started), changed, deleted)
	return nil
}

func (s *AutoupdateService) reconcile(ctx context.Context, data models.ModelData) (changedCount, deletedCount int, err error) {
	slot, err := s.store.GetNewUpdateSlot(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer slot.Discard()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrReconciliationPanic, r)
		}
	}()

	deleted, changed := s.classify(data)

	for _, collection := range sortedKeys(deleted) {
		ids := deleted[collection]
		if err = slot.Remove(collection, ids...); err != nil {
			return 0, 0, err
		}
		deletedCount += len(ids)
	}
	for _, collection := range sortedKeys(changed) {
		items := changed[collection]
		if err = slot.AddOrUpdate(items...); err != nil {
			return 0, 0, err
		}
		changedCount += len(items)
	}

	if _, err = slot.Commit(); err != nil {
		return 0, 0, err
	}
	return changedCount, deletedCount, nil
}

func (s *AutoupdateService) classify(data models.ModelData) (map[string][]int, map[string][]models.BaseModel) {
	deleted := make(map[string][]int)
	changed := make(map[string][]models.BaseModel)

	for _, collection := range sortedKeys(data) {
		byID := data[collection]
		constructor, registered := s.mapper.GetModelConstructor(collection)

		for _, key := range sortedKeys(byID) {
			fields := byID[key]
			id, err := strconv.Atoi(key)
			if err != nil {
				s.logger.Error().Err(err).Str("func", "AutoupdateService.classify").
					Str("collection", collection).Str("id", key).Msg("invalid model id")
				continue
			}

			if models.Deleted(fields) {
				deleted[collection] = append(deleted[collection], id)
				continue
			}

			if !registered {
				s.logger.Error().Str("func", "AutoupdateService.classify").
					Str("collection", collection).Int("id", id).
					Msg("collection is not registered, model skipped")
				continue
			}

			model, err := constructor(s.merge(collection, id, fields))
			if err != nil {
				s.logger.Error().Err(err).Str("func", "AutoupdateService.classify").
					Str("collection", collection).Int("id", id).Msg("failed to construct model")
				continue
			}
			changed[collection] = append(changed[collection], model)
		}
	}

	return deleted, changed
}

// merge overlays the delta fields on the stored model. A nil value clears
// the field.
func (s *AutoupdateService) merge(collection string, id int, delta map[string]any) map[string]any {
	fields := make(map[string]any, len(delta)+1)

	if existing, ok := s.store.Get(collection, id); ok {
		if raw, err := json.Marshal(existing); err == nil {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			_ = dec.Decode(&fields)
		}
	}

	for field, value := range delta {
		if value == nil {
			delete(fields, field)
			continue
		}
		fields[field] = value
	}
	fields["id"] = id
	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Restore loads cached models into the data store as one reconciliation
// pass, so the client has data before the first stream delivers any.
func (s *AutoupdateService) Restore(ctx context.Context, records []models.ModelRecord) error {
	if len(records) == 0 {
		return nil
	}

	data := make(models.ModelData)
	for _, record := range records {
		var fields map[string]any
		dec := json.NewDecoder(bytes.NewReader(record.Data))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			s.logger.Error().Err(err).Str("func", "AutoupdateService.Restore").
				Str("fqid", record.FQID()).Msg("skipping unreadable cached model")
			continue
		}
		for field, value := range fields {
			data.Set(record.Collection, record.ID, field, value)
		}
		data.Set(record.Collection, record.ID, "id", record.ID)
	}

	return s.HandleAutoupdate(ctx, data)
}
