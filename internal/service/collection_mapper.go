// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/models"
)

// ModelConstructor builds a domain model from its field values.
type ModelConstructor func(fields map[string]any) (models.BaseModel, error)

// CollectionDefinition describes one collection for the mapper: how to
// construct its models, which named fieldsets it offers and which of its
// fields are relations that can be followed.
type CollectionDefinition struct {
	Name        string
	Constructor ModelConstructor
	Fieldsets   map[string][]string
	Relations   map[string]models.FieldDescriptor
}

// CollectionMapper is the registry of known collections.
type CollectionMapper struct {
	mu          sync.RWMutex
	collections map[string]CollectionDefinition
}

func NewCollectionMapper() *CollectionMapper {
	return &CollectionMapper{collections: make(map[string]CollectionDefinition)}
}

// Register adds or replaces a collection definition.
func (m *CollectionMapper) Register(def CollectionDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidCollectionDefinition)
	}
	if def.Constructor == nil {
		return fmt.Errorf("%w: %s has no constructor", ErrInvalidCollectionDefinition, def.Name)
	}
	for field, relation := range def.Relations {
		switch relation.Type {
		case models.FieldTypeRelation, models.FieldTypeRelationList, models.FieldTypeTemplate:
		case models.FieldTypeGenericRelation, models.FieldTypeGenericRelationList:
			continue
		default:
			return fmt.Errorf("%w: %s.%s has type %q", ErrInvalidCollectionDefinition, def.Name, field, relation.Type)
		}
		if relation.Collection == "" && relation.Type != models.FieldTypeTemplate {
			return fmt.Errorf("%w: %s.%s has no target collection", ErrInvalidCollectionDefinition, def.Name, field)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[def.Name] = def
	return nil
}

func (m *CollectionMapper) IsCollectionRegistered(collection string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[collection]
	return ok
}

// GetModelConstructor returns the constructor of collection.
func (m *CollectionMapper) GetModelConstructor(collection string) (ModelConstructor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.collections[collection]
	if !ok {
		return nil, false
	}
	return def.Constructor, true
}

// Fieldset returns a copy of the named fieldset of collection.
func (m *CollectionMapper) Fieldset(collection, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	fields, ok := def.Fieldsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrUnknownFieldset, collection, name)
	}
	return slices.Clone(fields), nil
}

// Relation returns the relation registered for field of collection.
func (m *CollectionMapper) Relation(collection, field string) (models.FieldDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.collections[collection]
	if !ok {
		return models.FieldDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	relation, ok := def.Relations[field]
	if !ok {
		return models.FieldDescriptor{}, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, collection, field)
	}
	return relation, nil
}

// Collections returns the registered collection names, sorted.
func (m *CollectionMapper) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ConstructorFor returns a [ModelConstructor] decoding the fields into T
// through their JSON representation.
func ConstructorFor[T models.BaseModel]() ModelConstructor {
	return func(fields map[string]any) (models.BaseModel, error) {
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		var model T
		if err = json.Unmarshal(raw, &model); err != nil {
			return nil, err
		}
		return model, nil
	}
}

func relation(collection string) models.FieldDescriptor {
	return models.FieldDescriptor{Type: models.FieldTypeRelation, Collection: collection}
}

func relationList(collection string) models.FieldDescriptor {
	return models.FieldDescriptor{Type: models.FieldTypeRelationList, Collection: collection}
}

func genericRelation() models.FieldDescriptor {
	return models.FieldDescriptor{Type: models.FieldTypeGenericRelation}
}

func template(collection string) models.FieldDescriptor {
	return models.FieldDescriptor{Type: models.FieldTypeTemplate, Collection: collection}
}

// RegisterDefaultCollections registers every domain collection of the
// assembly system.
func RegisterDefaultCollections(m *CollectionMapper) error {
	definitions := []CollectionDefinition{
		{
			Name:        models.CollectionUser,
			Constructor: ConstructorFor[models.User](),
			Fieldsets: map[string][]string{
				DefaultFieldset: {"username", "title", "first_name", "last_name", "is_active", "structure_level", "number"},
				"short":         {"username", "first_name", "last_name"},
			},
			Relations: map[string]models.FieldDescriptor{
				"committee_as_member_ids":   relationList(models.CollectionCommittee),
				"is_present_in_meeting_ids": relationList(models.CollectionMeeting),
				"group_$_ids":               template(models.CollectionGroup),
				"speaker_$_ids":             template(models.CollectionSpeaker),
			},
		},
		{
			Name:        models.CollectionCommittee,
			Constructor: ConstructorFor[models.Committee](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"name", "description"}},
			Relations: map[string]models.FieldDescriptor{
				"meeting_ids": relationList(models.CollectionMeeting),
				"member_ids":  relationList(models.CollectionUser),
				"manager_ids": relationList(models.CollectionUser),
			},
		},
		{
			Name:        models.CollectionMeeting,
			Constructor: ConstructorFor[models.Meeting](),
			Fieldsets: map[string][]string{
				DefaultFieldset: {"name", "description", "location", "start_time", "end_time"},
				"title":         {"name"},
			},
			Relations: map[string]models.FieldDescriptor{
				"committee_id":           relation(models.CollectionCommittee),
				"group_ids":              relationList(models.CollectionGroup),
				"motion_ids":             relationList(models.CollectionMotion),
				"agenda_item_ids":        relationList(models.CollectionAgendaItem),
				"projector_ids":          relationList(models.CollectionProjector),
				"present_user_ids":       relationList(models.CollectionUser),
				"reference_projector_id": relation(models.CollectionProjector),
			},
		},
		{
			Name:        models.CollectionGroup,
			Constructor: ConstructorFor[models.Group](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"name", "permissions"}},
			Relations: map[string]models.FieldDescriptor{
				"user_ids":   relationList(models.CollectionUser),
				"meeting_id": relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionMotion,
			Constructor: ConstructorFor[models.Motion](),
			Fieldsets: map[string][]string{
				DefaultFieldset: {"number", "title", "text", "reason", "weight", "created", "last_modified"},
				"list":          {"number", "title", "weight"},
			},
			Relations: map[string]models.FieldDescriptor{
				"meeting_id":          relation(models.CollectionMeeting),
				"block_id":            relation(models.CollectionMotionBlock),
				"lead_motion_id":      relation(models.CollectionMotion),
				"amendment_ids":       relationList(models.CollectionMotion),
				"supporter_ids":       relationList(models.CollectionUser),
				"poll_ids":            relationList(models.CollectionPoll),
				"agenda_item_id":      relation(models.CollectionAgendaItem),
				"list_of_speakers_id": relation(models.CollectionListOfSpeakers),
			},
		},
		{
			Name:        models.CollectionMotionBlock,
			Constructor: ConstructorFor[models.MotionBlock](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"title", "internal"}},
			Relations: map[string]models.FieldDescriptor{
				"motion_ids":          relationList(models.CollectionMotion),
				"meeting_id":          relation(models.CollectionMeeting),
				"agenda_item_id":      relation(models.CollectionAgendaItem),
				"list_of_speakers_id": relation(models.CollectionListOfSpeakers),
			},
		},
		{
			Name:        models.CollectionAgendaItem,
			Constructor: ConstructorFor[models.AgendaItem](),
			Fieldsets: map[string][]string{
				DefaultFieldset: {"item_number", "comment", "closed", "type", "duration", "weight", "level"},
			},
			Relations: map[string]models.FieldDescriptor{
				"content_object_id": genericRelation(),
				"parent_id":         relation(models.CollectionAgendaItem),
				"child_ids":         relationList(models.CollectionAgendaItem),
				"meeting_id":        relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionListOfSpeakers,
			Constructor: ConstructorFor[models.ListOfSpeakers](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"closed"}},
			Relations: map[string]models.FieldDescriptor{
				"content_object_id": genericRelation(),
				"speaker_ids":       relationList(models.CollectionSpeaker),
				"meeting_id":        relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionSpeaker,
			Constructor: ConstructorFor[models.Speaker](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"begin_time", "end_time", "weight", "marked"}},
			Relations: map[string]models.FieldDescriptor{
				"list_of_speakers_id": relation(models.CollectionListOfSpeakers),
				"user_id":             relation(models.CollectionUser),
				"meeting_id":          relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionTopic,
			Constructor: ConstructorFor[models.Topic](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"title", "text"}},
			Relations: map[string]models.FieldDescriptor{
				"agenda_item_id":      relation(models.CollectionAgendaItem),
				"list_of_speakers_id": relation(models.CollectionListOfSpeakers),
				"meeting_id":          relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionProjector,
			Constructor: ConstructorFor[models.Projector](),
			Fieldsets: map[string][]string{
				DefaultFieldset: {"name", "scale", "scroll", "width", "aspect_ratio_numerator", "aspect_ratio_denominator"},
			},
			Relations: map[string]models.FieldDescriptor{
				"current_projection_ids": relationList(models.CollectionProjection),
				"preview_projection_ids": relationList(models.CollectionProjection),
				"history_projection_ids": relationList(models.CollectionProjection),
				"meeting_id":             relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionProjection,
			Constructor: ConstructorFor[models.Projection](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"stable", "type", "weight"}},
			Relations: map[string]models.FieldDescriptor{
				"element_id":           genericRelation(),
				"current_projector_id": relation(models.CollectionProjector),
				"preview_projector_id": relation(models.CollectionProjector),
				"history_projector_id": relation(models.CollectionProjector),
				"meeting_id":           relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionPoll,
			Constructor: ConstructorFor[models.Poll](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"title", "type", "pollmethod", "state"}},
			Relations: map[string]models.FieldDescriptor{
				"content_object_id": genericRelation(),
				"option_ids":        relationList(models.CollectionOption),
				"voted_ids":         relationList(models.CollectionUser),
				"meeting_id":        relation(models.CollectionMeeting),
			},
		},
		{
			Name:        models.CollectionOption,
			Constructor: ConstructorFor[models.Option](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"text", "yes", "no", "abstain"}},
			Relations: map[string]models.FieldDescriptor{
				"poll_id":  relation(models.CollectionPoll),
				"vote_ids": relationList(models.CollectionVote),
			},
		},
		{
			Name:        models.CollectionVote,
			Constructor: ConstructorFor[models.Vote](),
			Fieldsets:   map[string][]string{DefaultFieldset: {"value", "weight"}},
			Relations: map[string]models.FieldDescriptor{
				"option_id": relation(models.CollectionOption),
				"user_id":   relation(models.CollectionUser),
			},
		},
	}

	for _, def := range definitions {
		if err := m.Register(def); err != nil {
			return err
		}
	}
	return nil
}
