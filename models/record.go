package models

import (
	"encoding/json"
	"time"
)

// ModelRecord is one model as persisted by a repository: its identity and
// its fields as a JSON object.
type ModelRecord struct {
	Collection string          `json:"collection"`
	ID         int             `json:"id"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updated_at,omitzero"`
}

// FQID returns the "collection/id" key of the record.
func (r ModelRecord) FQID() string {
	return FQID(r.Collection, r.ID)
}
