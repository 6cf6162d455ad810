// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// BaseModel is a typed record of a named collection with a per-collection
// unique integer id. Every domain type stored in the data store implements it.
type BaseModel interface {
	// Collection returns the collection name, e.g. "user".
	Collection() string

	// GetID returns the model id inside its collection.
	GetID() int
}

// Base carries the fields every domain model has.
type Base struct {
	ID int `json:"id"`
}

// GetID implements [BaseModel].
func (b Base) GetID() int {
	return b.ID
}
