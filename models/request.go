// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"reflect"
)

// FieldType names the kind of a [FieldDescriptor].
type FieldType string

const (
	FieldTypeRelation            FieldType = "relation"
	FieldTypeRelationList        FieldType = "relation-list"
	FieldTypeGenericRelation     FieldType = "generic-relation"
	FieldTypeGenericRelationList FieldType = "generic-relation-list"
	FieldTypeTemplate            FieldType = "template"
)

// Fields maps a field name to its descriptor. A nil descriptor requests the
// plain field value.
type Fields map[string]*FieldDescriptor

// FieldDescriptor describes which related collections and fields have to be
// fetched together with a field.
type FieldDescriptor struct {
	// Type is the kind of relation the field holds.
	Type FieldType `json:"type"`

	// Collection is the target collection of a relation or relation-list.
	// Generic relations carry the collection inside the value itself.
	Collection string `json:"collection,omitempty"`

	// Fields describes the fields to fetch on the related models.
	Fields Fields `json:"fields,omitempty"`

	// Values describes the fields to fetch for every replacement of a
	// template field (e.g. "group_$_ids"). They are fetched on Collection
	// when it is set; otherwise the concrete fields are plain values.
	Values Fields `json:"values,omitempty"`
}

// ModelRequest is the declarative description of which models (and which of
// their fields) a client wants to be kept in sync. It is sent to the
// autoupdate endpoint as the only element of a JSON array.
type ModelRequest struct {
	Collection string `json:"collection"`
	IDs        []int  `json:"ids"`
	Fields     Fields `json:"fields"`
}

// Validate checks the request invariants: a collection is named, ids are
// unique, every descriptor is well-formed and the field specification is
// finite (no Fields map is reachable from itself).
func (r ModelRequest) Validate() error {
	if r.Collection == "" {
		return ErrEmptyCollection
	}

	seen := make(map[int]struct{}, len(r.IDs))
	for _, id := range r.IDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s/%d", ErrDuplicateID, r.Collection, id)
		}
		seen[id] = struct{}{}
	}

	return validateFields(r.Fields, map[uintptr]struct{}{}, r.Collection)
}

func validateFields(fields Fields, path map[uintptr]struct{}, where string) error {
	if fields == nil {
		return nil
	}

	ptr := reflect.ValueOf(fields).Pointer()
	if _, ok := path[ptr]; ok {
		return fmt.Errorf("%w: at %s", ErrCyclicFields, where)
	}
	path[ptr] = struct{}{}
	defer delete(path, ptr)

	for name, descriptor := range fields {
		if descriptor == nil {
			continue
		}
		at := where + "." + name

		switch descriptor.Type {
		case FieldTypeRelation, FieldTypeRelationList:
			if descriptor.Collection == "" {
				return fmt.Errorf("%w: %s has no target collection", ErrInvalidFieldDescriptor, at)
			}
		case FieldTypeGenericRelation, FieldTypeGenericRelationList:
		case FieldTypeTemplate:
			if err := validateFields(descriptor.Values, path, at); err != nil {
				return err
			}
			continue
		default:
			return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidFieldDescriptor, at, descriptor.Type)
		}

		if err := validateFields(descriptor.Fields, path, at); err != nil {
			return err
		}
	}

	return nil
}

// SimplifiedModelRequest is the compact request form used by callers that
// do not want to spell out field descriptors. It is expanded into a
// [ModelRequest] by the model request builder.
type SimplifiedModelRequest struct {
	Collection string   `json:"collection"`
	IDs        []int    `json:"ids"`
	Fieldset   string   `json:"fieldset,omitempty"`
	Follow     []Follow `json:"follow,omitempty"`
}

// Follow names a relation field to follow and what to fetch on the other side.
type Follow struct {
	// IDField is the relation field on the current collection, e.g. "speaker_ids".
	IDField  string   `json:"id_field"`
	Fieldset string   `json:"fieldset,omitempty"`
	Follow   []Follow `json:"follow,omitempty"`
}
