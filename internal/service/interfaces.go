// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the sync core of the client and the autoupdate
// logic of the reference server.
//
// On the client, [AutoupdateService] turns model requests into streams via
// the [CommunicationManager] and reconciles every delta into the data
// store. [ConnectivityService] emits the boot, online and offline signals the
// manager reacts to. On the server, [ServerAutoupdateService] resolves model
// requests against the datastore and produces the deltas.
package service

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// MessageHandler receives the messages of one stream in arrival order.
type MessageHandler func(ctx context.Context, message json.RawMessage)

// BodyGetter and ParamsGetter are evaluated on every connection attempt.
type (
	BodyGetter   func() any
	ParamsGetter func() url.Values
)

// CloseFunc closes a stream and forgets its container. It is idempotent.
type CloseFunc func()

// Communicator opens streams on behalf of the autoupdate service.
type Communicator interface {
	Connect(ctx context.Context, endpointName string, handler MessageHandler, body BodyGetter, params ParamsGetter) (CloseFunc, error)
	OnStartCommunication(listener func(ctx context.Context))
}

// OfflineReporter is told when a stream found the server unreachable.
type OfflineReporter interface {
	GoOffline(reason error)
}

// RequestBuilder expands simplified requests.
type RequestBuilder interface {
	Build(simple models.SimplifiedModelRequest) (models.ModelRequest, error)
}

// ModelStore is the part of the data store the reconciliation needs.
type ModelStore interface {
	GetNewUpdateSlot(ctx context.Context) (*store.UpdateSlot, error)
	Get(collection string, id int) (models.BaseModel, bool)
}

// StatsRecorder collects reconciliation statistics.
type StatsRecorder interface {
	ObserveMessage()
	ObserveReconciliation(duration time.Duration, changed, deleted int)
}

type nopStats struct{}

func (nopStats) ObserveMessage()                               {}
func (nopStats) ObserveReconciliation(time.Duration, int, int) {}
