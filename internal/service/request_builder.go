package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-assembly-sync/models"
)

const (
	// DefaultFieldset is used when a request does not name a fieldset.
	DefaultFieldset = "default"

	// MaxFollowDepth bounds the nesting of follows in one request.
	MaxFollowDepth = 8
)

// ModelRequestBuilder expands a [models.SimplifiedModelRequest] into a full
// [models.ModelRequest] using the fieldsets and relations of a
// [CollectionMapper].
type ModelRequestBuilder struct {
	mapper *CollectionMapper
}

func NewModelRequestBuilder(mapper *CollectionMapper) *ModelRequestBuilder {
	return &ModelRequestBuilder{mapper: mapper}
}

// Build implements [RequestBuilder].
//
// A collection without the requested fieldset fails the build. When no
// fieldset is named, the collection's default fieldset is used if it has
// one; otherwise the request asks for every field. Generic relations can be
// followed but not narrowed, since their target collection is only known
// per value.
func (b *ModelRequestBuilder) Build(simple models.SimplifiedModelRequest) (models.ModelRequest, error) {
	fields, err := b.buildFields(simple.Collection, simple.Fieldset, simple.Follow, 0)
	if err != nil {
		return models.ModelRequest{}, err
	}

	req := models.ModelRequest{
		Collection: simple.Collection,
		IDs:        simple.IDs,
		Fields:     fields,
	}
	if err = req.Validate(); err != nil {
		return models.ModelRequest{}, err
	}
	return req, nil
}

func (b *ModelRequestBuilder) buildFields(collection, fieldset string, follows []models.Follow, depth int) (models.Fields, error) {
	if depth > MaxFollowDepth {
		return nil, fmt.Errorf("%w: deeper than %d at %s", ErrFollowTooDeep, MaxFollowDepth, collection)
	}
	if !b.mapper.IsCollectionRegistered(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	names, err := b.fieldsetFields(collection, fieldset)
	if err != nil {
		return nil, err
	}
	if names == nil && len(follows) == 0 {
		return nil, nil
	}

	fields := make(models.Fields, len(names)+len(follows))
	for _, name := range names {
		fields[name] = nil
	}

	for _, follow := range follows {
		rel, err := b.mapper.Relation(collection, follow.IDField)
		if err != nil {
			return nil, err
		}

		descriptor := &models.FieldDescriptor{Type: rel.Type, Collection: rel.Collection}
		switch rel.Type {
		case models.FieldTypeGenericRelation, models.FieldTypeGenericRelationList:
			if follow.Fieldset != "" || len(follow.Follow) > 0 {
				return nil, fmt.Errorf("%w: generic relation %s.%s cannot be narrowed",
					ErrUnknownFieldset, collection, follow.IDField)
			}
		case models.FieldTypeTemplate:
			if rel.Collection != "" {
				descriptor.Values, err = b.buildFields(rel.Collection, follow.Fieldset, follow.Follow, depth+1)
			}
		default:
			descriptor.Fields, err = b.buildFields(rel.Collection, follow.Fieldset, follow.Follow, depth+1)
		}
		if err != nil {
			return nil, err
		}

		fields[follow.IDField] = descriptor
	}

	return fields, nil
}

func (b *ModelRequestBuilder) fieldsetFields(collection, fieldset string) ([]string, error) {
	if fieldset != "" {
		return b.mapper.Fieldset(collection, fieldset)
	}

	names, err := b.mapper.Fieldset(collection, DefaultFieldset)
	if errors.Is(err, ErrUnknownFieldset) {
		return nil, nil
	}
	return names, err
}
