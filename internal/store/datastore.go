// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// CommitEvent describes the effective changes of one committed update slot.
// Ids are sorted per collection.
type CommitEvent struct {
	Changed map[string][]int
	Deleted map[string][]int
}

// Empty reports whether the commit changed nothing.
func (e CommitEvent) Empty() bool {
	return len(e.Changed) == 0 && len(e.Deleted) == 0
}

// DataStore is the local cache of domain models, keyed by collection and id.
// Reads are safe at any time. Mutations go through an [UpdateSlot] and at
// most one slot is open at a time; further requests queue in FIFO order.
type DataStore struct {
	mu     sync.RWMutex
	models map[string]map[int]models.BaseModel

	slots *utils.Mutex

	subsMu  sync.Mutex
	subs    map[int]*subscription
	nextSub int

	logger *logger.Logger
}

type subscription struct {
	ch   chan CommitEvent
	done chan struct{}
	once sync.Once
}

// NewDataStore creates an empty store.
func NewDataStore(log *logger.Logger) *DataStore {
	return &DataStore{
		models: make(map[string]map[int]models.BaseModel),
		slots:  utils.NewMutex(),
		subs:   make(map[int]*subscription),
		logger: log,
	}
}

// GetNewUpdateSlot reserves the right to mutate the store. It blocks while
// another slot is open and fails when ctx is done first.
func (s *DataStore) GetNewUpdateSlot(ctx context.Context) (*UpdateSlot, error) {
	release, err := s.slots.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSlotUnavailable, err)
	}

	return &UpdateSlot{store: s, release: release}, nil
}

// Get returns the model stored under collection and id.
func (s *DataStore) Get(collection string, id int) (models.BaseModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, ok := s.models[collection][id]
	return model, ok
}

// GetAll returns the models of a collection ordered by id.
func (s *DataStore) GetAll(collection string) []models.BaseModel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := s.models[collection]
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]models.BaseModel, 0, len(ids))
	for _, id := range ids {
		result = append(result, byID[id])
	}
	return result
}

// Count returns the number of models of a collection.
func (s *DataStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.models[collection])
}

// Collections returns the sorted names of all non-empty collections.
func (s *DataStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.models))
	for name, byID := range s.models {
		if len(byID) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Subscribe registers an observer of commits. Events are delivered in commit
// order; a slow observer delays the committing slot's release, not readers.
// The returned function unsubscribes and closes the channel.
func (s *DataStore) Subscribe(buffer int) (<-chan CommitEvent, func()) {
	sub := &subscription{
		ch:   make(chan CommitEvent, buffer),
		done: make(chan struct{}),
	}

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subsMu.Unlock()

	return sub.ch, func() {
		sub.once.Do(func() {
			close(sub.done)

			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()

			close(sub.ch)
		})
	}
}

func (s *DataStore) publish(event CommitEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		}
	}
}

// apply runs the staged operations under the write lock and returns the
// effective changes.
func (s *DataStore) apply(ops []stagedOp) CommitEvent {
	changed := make(map[string]map[int]struct{})
	deleted := make(map[string]map[int]struct{})

	s.mu.Lock()
	for _, op := range ops {
		if op.remove {
			byID := s.models[op.collection]
			for _, id := range op.ids {
				if _, ok := byID[id]; !ok {
					continue
				}
				delete(byID, id)
				mark(deleted, op.collection, id)
				unmark(changed, op.collection, id)
			}
			continue
		}

		collection := op.model.Collection()
		id := op.model.GetID()
		byID, ok := s.models[collection]
		if !ok {
			byID = make(map[int]models.BaseModel)
			s.models[collection] = byID
		}
		if old, exists := byID[id]; exists && reflect.DeepEqual(old, op.model) {
			continue
		}
		byID[id] = op.model
		mark(changed, collection, id)
		unmark(deleted, collection, id)
	}
	s.mu.Unlock()

	return CommitEvent{Changed: sortedIDs(changed), Deleted: sortedIDs(deleted)}
}

func mark(set map[string]map[int]struct{}, collection string, id int) {
	ids, ok := set[collection]
	if !ok {
		ids = make(map[int]struct{})
		set[collection] = ids
	}
	ids[id] = struct{}{}
}

func unmark(set map[string]map[int]struct{}, collection string, id int) {
	if ids, ok := set[collection]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(set, collection)
		}
	}
}

func sortedIDs(set map[string]map[int]struct{}) map[string][]int {
	result := make(map[string][]int, len(set))
	for collection, ids := range set {
		list := make([]int, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		slices.Sort(list)
		result[collection] = list
	}
	return result
}
