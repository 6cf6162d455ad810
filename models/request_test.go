// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRequest_Validate_OK(t *testing.T) {
	req := ModelRequest{
		Collection: CollectionMotion,
		IDs:        []int{1, 2, 3},
		Fields: Fields{
			"title": nil,
			"list_of_speakers_id": {
				Type:       FieldTypeRelation,
				Collection: CollectionListOfSpeakers,
				Fields: Fields{
					"speaker_ids": {
						Type:       FieldTypeRelationList,
						Collection: CollectionSpeaker,
						Fields:     Fields{"user_id": nil},
					},
				},
			},
			"group_$_ids": {Type: FieldTypeTemplate, Values: Fields{"name": nil}},
		},
	}

	require.NoError(t, req.Validate())
}

func TestModelRequest_Validate_Errors(t *testing.T) {
	cyclic := Fields{}
	cyclic["parent_id"] = &FieldDescriptor{Type: FieldTypeRelation, Collection: CollectionAgendaItem, Fields: cyclic}

	tests := []struct {
		name    string
		req     ModelRequest
		wantErr error
	}{
		{
			name:    "empty collection",
			req:     ModelRequest{IDs: []int{1}},
			wantErr: ErrEmptyCollection,
		},
		{
			name:    "duplicate ids",
			req:     ModelRequest{Collection: CollectionUser, IDs: []int{1, 2, 1}},
			wantErr: ErrDuplicateID,
		},
		{
			name: "relation without collection",
			req: ModelRequest{Collection: CollectionMotion, IDs: []int{1}, Fields: Fields{
				"block_id": {Type: FieldTypeRelation},
			}},
			wantErr: ErrInvalidFieldDescriptor,
		},
		{
			name: "unknown type",
			req: ModelRequest{Collection: CollectionMotion, IDs: []int{1}, Fields: Fields{
				"block_id": {Type: "weird"},
			}},
			wantErr: ErrInvalidFieldDescriptor,
		},
		{
			name:    "cyclic fields",
			req:     ModelRequest{Collection: CollectionAgendaItem, IDs: []int{1}, Fields: cyclic},
			wantErr: ErrCyclicFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModelRequest_Validate_SharedFieldsAreNotCyclic(t *testing.T) {
	shared := Fields{"username": nil}
	req := ModelRequest{Collection: CollectionSpeaker, IDs: []int{1}, Fields: Fields{
		"user_id":    {Type: FieldTypeRelation, Collection: CollectionUser, Fields: shared},
		"creator_id": {Type: FieldTypeRelation, Collection: CollectionUser, Fields: shared},
	}}

	assert.NoError(t, req.Validate())
}

func TestModelRequest_JSON(t *testing.T) {
	req := ModelRequest{
		Collection: CollectionUser,
		IDs:        []int{5},
		Fields:     Fields{"username": nil, "group_$_ids": {Type: FieldTypeTemplate, Values: Fields{"name": nil}}},
	}

	raw, err := json.Marshal([]ModelRequest{req})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"collection":"user","ids":[5],"fields":{"username":null,"group_$_ids":{"type":"template","values":{"name":null}}}}]`, string(raw))
}
