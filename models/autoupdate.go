// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MetaDeleted is the reserved field marking a model as logically deleted.
// It never collides with a domain field.
const MetaDeleted = "meta_deleted"

const keySeparator = "/"

// AutoupdateModelData is one delta message as it arrives on the wire. Keys
// are either "collection/id/field" (value is the field value, null clears the
// field) or "collection/id" (value is an object of fields, null deletes the
// model).
type AutoupdateModelData map[string]json.RawMessage

// ModelData is the normalised form of a delta:
// collection -> id (decimal string) -> field -> value.
type ModelData map[string]map[string]map[string]any

// FQID builds the "collection/id" key of a model.
func FQID(collection string, id int) string {
	return collection + keySeparator + strconv.Itoa(id)
}

// FQField builds the "collection/id/field" key of a model field.
func FQField(collection string, id int, field string) string {
	return FQID(collection, id) + keySeparator + field
}

// ParseFQID splits a "collection/id" value, as used by generic relations.
func ParseFQID(fqid string) (string, int, error) {
	parts := strings.Split(fqid, keySeparator)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, fqid)
	}
	id, err := parseID(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, fqid)
	}
	return parts[0], id, nil
}

// ToModelData converts the wire delta into [ModelData]. Conversion happens
// once per message; a malformed key fails the whole message.
func (d AutoupdateModelData) ToModelData() (ModelData, error) {
	data := make(ModelData)

	for key, raw := range d {
		parts := strings.Split(key, keySeparator)
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}
		if _, err := parseID(parts[1]); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}

		model := data.model(parts[0], parts[1])

		if len(parts) == 3 {
			value, err := decodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", key, err)
			}
			model[parts[2]] = value
			continue
		}

		if isNull(raw) {
			model[MetaDeleted] = true
			continue
		}

		var fields map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		for field, value := range fields {
			model[field] = value
		}
	}

	return data, nil
}

// Set stores a field value, creating the intermediate maps when needed.
func (m ModelData) Set(collection string, id int, field string, value any) {
	m.model(collection, strconv.Itoa(id))[field] = value
}

// Deleted reports whether the model entry carries the deletion flag.
func Deleted(model map[string]any) bool {
	deleted, ok := model[MetaDeleted].(bool)
	return ok && deleted
}

func (m ModelData) model(collection, id string) map[string]any {
	byID, ok := m[collection]
	if !ok {
		byID = make(map[string]map[string]any)
		m[collection] = byID
	}
	model, ok := byID[id]
	if !ok {
		model = make(map[string]any)
		byID[id] = model
	}
	return model
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
