// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// maxResolveDepth bounds how many relation hops one resolution follows.
const maxResolveDepth = 32

// ResolvedModels is the flat state of a resolved request, keyed by
// "collection/id/field".
type ResolvedModels map[string]json.RawMessage

// ServerAutoupdateService resolves model requests against the datastore and
// produces the deltas a subscriber has to receive.
type ServerAutoupdateService struct {
	repo         store.ModelsRepository
	pollInterval time.Duration
	logger       *logger.Logger
}

func NewServerAutoupdateService(repo store.ModelsRepository, pollInterval time.Duration, log *logger.Logger) *ServerAutoupdateService {
	return &ServerAutoupdateService{repo: repo, pollInterval: pollInterval, logger: log}
}

// Subscribe emits the full state of reqs, then polls the datastore every
// poll interval and emits the differences. It returns when ctx is done or
// emit or a resolution fails.
func (s *ServerAutoupdateService) Subscribe(
	ctx context.Context,
	reqs []models.ModelRequest,
	emit func(models.AutoupdateModelData) error,
) error {
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return err
		}
	}

	state, err := s.ResolveAll(ctx, reqs)
	if err != nil {
		return err
	}
	if err = emit(Diff(nil, state)); err != nil {
		return err
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			next, err := s.ResolveAll(ctx, reqs)
			if err != nil {
				return err
			}

			delta := Diff(state, next)
			state = next
			if len(delta) == 0 {
				continue
			}
			s.logger.Debug().Str("func", "ServerAutoupdateService.Subscribe").Int("keys", len(delta)).Msg("emitting delta")
			if err = emit(delta); err != nil {
				return err
			}
		}
	}
}

// ResolveAll resolves several requests into one state.
func (s *ServerAutoupdateService) ResolveAll(ctx context.Context, reqs []models.ModelRequest) (ResolvedModels, error) {
	out := make(ResolvedModels)
	r := &resolution{repo: s.repo, out: out, seen: make(map[string]struct{})}
	for _, req := range reqs {
		if err := r.resolve(ctx, req.Collection, req.IDs, req.Fields, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Resolve fetches the requested models and every related model the field
// descriptors ask for. An empty field set fetches every stored field.
func (s *ServerAutoupdateService) Resolve(ctx context.Context, req models.ModelRequest) (ResolvedModels, error) {
	return s.ResolveAll(ctx, []models.ModelRequest{req})
}

type resolution struct {
	repo store.ModelsRepository
	out  ResolvedModels
	seen map[string]struct{}
}

type pendingFetch struct {
	collection string
	fields     models.Fields
	ids        []int
}

func (r *resolution) resolve(ctx context.Context, collection string, ids []int, fields models.Fields, depth int) error {
	if depth > maxResolveDepth {
		return fmt.Errorf("%w: at %s", ErrResolveTooDeep, collection)
	}

	var todo []int
	for _, id := range ids {
		// the same model may be reached with different field sets
		key := fmt.Sprintf("%s@%p", models.FQID(collection, id), fields)
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		todo = append(todo, id)
	}
	if len(todo) == 0 {
		return nil
	}

	records, err := r.repo.GetModels(ctx, collection, todo)
	if err != nil {
		return fmt.Errorf("get %s models: %w", collection, err)
	}

	var next []*pendingFetch
	follow := func(target string, targetFields models.Fields, targetIDs ...int) {
		for _, p := range next {
			if p.collection == target && sameFields(p.fields, targetFields) {
				p.ids = append(p.ids, targetIDs...)
				return
			}
		}
		next = append(next, &pendingFetch{collection: target, fields: targetFields, ids: targetIDs})
	}

	for _, record := range records {
		var object map[string]json.RawMessage
		if err = json.Unmarshal(record.Data, &object); err != nil {
			return fmt.Errorf("decode %s: %w", record.FQID(), err)
		}
		r.put(collection, record.ID, "id", json.RawMessage(fmt.Sprint(record.ID)))

		if len(fields) == 0 {
			for field, value := range object {
				r.put(collection, record.ID, field, value)
			}
			continue
		}

		for field, descriptor := range fields {
			value, ok := object[field]
			if !ok {
				continue
			}
			r.put(collection, record.ID, field, value)
			if descriptor == nil {
				continue
			}

			switch descriptor.Type {
			case models.FieldTypeRelation:
				var id int
				if json.Unmarshal(value, &id) == nil && id > 0 {
					follow(descriptor.Collection, descriptor.Fields, id)
				}
			case models.FieldTypeRelationList:
				var ids []int
				if json.Unmarshal(value, &ids) == nil {
					follow(descriptor.Collection, descriptor.Fields, ids...)
				}
			case models.FieldTypeGenericRelation:
				var fqid string
				if json.Unmarshal(value, &fqid) == nil {
					if target, id, err := models.ParseFQID(fqid); err == nil {
						follow(target, descriptor.Fields, id)
					}
				}
			case models.FieldTypeGenericRelationList:
				var fqids []string
				if json.Unmarshal(value, &fqids) == nil {
					for _, fqid := range fqids {
						if target, id, err := models.ParseFQID(fqid); err == nil {
							follow(target, descriptor.Fields, id)
						}
					}
				}
			case models.FieldTypeTemplate:
				var replacements []string
				if json.Unmarshal(value, &replacements) != nil {
					continue
				}
				for _, replacement := range replacements {
					concrete := strings.Replace(field, "$", replacement, 1)
					concreteValue, ok := object[concrete]
					if !ok {
						continue
					}
					r.put(collection, record.ID, concrete, concreteValue)

					var ids []int
					if descriptor.Collection != "" && json.Unmarshal(concreteValue, &ids) == nil {
						follow(descriptor.Collection, descriptor.Values, ids...)
					}
				}
			}
		}
	}

	for _, p := range next {
		if err = r.resolve(ctx, p.collection, p.ids, p.fields, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolution) put(collection string, id int, field string, value json.RawMessage) {
	r.out[models.FQField(collection, id, field)] = value
}

// sameFields reports whether a and b are the same map, not equal ones.
func sameFields(a, b models.Fields) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Diff returns the delta turning prev into next. Fields missing from next
// are cleared with null; a model missing from next entirely is marked
// with the deletion flag instead.
func Diff(prev, next ResolvedModels) models.AutoupdateModelData {
	delta := make(models.AutoupdateModelData)

	for key, value := range next {
		if old, ok := prev[key]; ok && jsonEqual(old, value) {
			continue
		}
		delta[key] = value
	}

	live := make(map[string]struct{})
	for key := range next {
		live[fqidOf(key)] = struct{}{}
	}

	deleted := make(map[string]struct{})
	for key := range prev {
		if _, ok := next[key]; ok {
			continue
		}
		fqid := fqidOf(key)
		if _, ok := live[fqid]; ok {
			delta[key] = json.RawMessage("null")
			continue
		}
		deleted[fqid] = struct{}{}
	}

	for _, fqid := range slices.Sorted(maps.Keys(deleted)) {
		delta[fqid+"/"+models.MetaDeleted] = json.RawMessage("true")
	}
	return delta
}

func fqidOf(key string) string {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return key
	}
	return key[:idx]
}

func jsonEqual(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
