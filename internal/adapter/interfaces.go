// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client's streaming transport. It opens long-lived
// HTTP requests against registered endpoints and turns their
// newline-delimited JSON responses into a channel of messages.
//
// Transport failures are mapped to the sentinel errors in errors.go. A
// failure caused by the server being unreachable surfaces as [ErrOffline] so
// callers can treat it as an expected condition.
package adapter

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/MKhiriev/go-assembly-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// StreamRequest is the snapshot of one connection attempt. Params and Body
// are evaluated by the caller right before Open, so a reconnect may carry
// different values.
type StreamRequest struct {
	Endpoint models.Endpoint
	Params   url.Values
	Body     any
	TraceID  string
}

// StreamTransport opens streams and probes server health.
type StreamTransport interface {
	// Open performs the request and returns once the response headers
	// arrived. Cancelling ctx terminates the stream.
	Open(ctx context.Context, req StreamRequest) (Stream, error)

	// CheckHealth returns nil when healthURL answers with 2xx and
	// [ErrOffline] when it cannot be reached.
	CheckHealth(ctx context.Context, healthURL string) error
}

// Stream is one open streaming response.
type Stream interface {
	// Messages yields the parsed messages in arrival order. It is closed
	// when the stream terminates.
	Messages() <-chan json.RawMessage

	// Done is closed after Messages is closed and Err is final.
	Done() <-chan struct{}

	// Err reports why the stream terminated: nil after Close, [ErrOffline]
	// when the server became unreachable, or another transport error.
	Err() error

	// Close terminates the stream and waits for the reader to exit.
	Close()
}
