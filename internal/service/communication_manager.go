// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/adapter"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
	"golang.org/x/sync/errgroup"
)

// streamContainer is one logical request. Its stream is replaced on every
// reconnect while id, handler and getters stay the same.
type streamContainer struct {
	id       int
	endpoint models.Endpoint
	handler  MessageHandler
	body     BodyGetter
	params   ParamsGetter

	// guarded by CommunicationManager.mu
	stream adapter.Stream
	// cancel aborts the pending open or ends the open stream; nil when idle
	cancel  context.CancelFunc
	attempt int
}

// detach takes the stream and the cancel func out of the container. The
// caller holds CommunicationManager.mu and releases both after unlocking.
func (c *streamContainer) detach() (adapter.Stream, context.CancelFunc) {
	s, cancel := c.stream, c.cancel
	c.stream, c.cancel = nil, nil
	return s, cancel
}

func releaseStream(s adapter.Stream, cancel context.CancelFunc) {
	if s != nil {
		s.Close()
	}
	if cancel != nil {
		cancel()
	}
}

// CommunicationManager owns every stream container and starts or stops all
// of them together when connectivity changes.
type CommunicationManager struct {
	transport adapter.StreamTransport
	endpoints *adapter.EndpointRegistry
	offline   OfflineReporter

	mu         sync.Mutex
	running    bool
	generation int
	containers map[int]*streamContainer
	nextID     int
	listeners  []func(ctx context.Context)

	starts sync.WaitGroup

	logger *logger.Logger
}

func NewCommunicationManager(
	transport adapter.StreamTransport,
	endpoints *adapter.EndpointRegistry,
	offline OfflineReporter,
	log *logger.Logger,
) *CommunicationManager {
	return &CommunicationManager{
		transport:  transport,
		endpoints:  endpoints,
		offline:    offline,
		containers: make(map[int]*streamContainer),
		logger:     log,
	}
}

// RegisterEndpoint registers an endpoint streams can be opened against.
func (m *CommunicationManager) RegisterEndpoint(name, url, healthURL, method string) error {
	return m.endpoints.Register(models.Endpoint{
		Name:      name,
		URL:       url,
		HealthURL: healthURL,
		Method:    method,
	})
}

// OnStartCommunication implements [Communicator]. Listeners run after every
// StartCommunication that actually started.
func (m *CommunicationManager) OnStartCommunication(listener func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Connect implements [Communicator]. It registers a container and, while
// communication is running, opens its stream. The returned CloseFunc is
// valid even when opening failed; only an unknown endpoint yields no
// container at all. An unreachable server is not an error.
func (m *CommunicationManager) Connect(
	ctx context.Context,
	endpointName string,
	handler MessageHandler,
	body BodyGetter,
	params ParamsGetter,
) (CloseFunc, error) {
	endpoint, err := m.endpoints.Get(endpointName)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.nextID++
	c := &streamContainer{
		id:       m.nextID,
		endpoint: endpoint,
		handler:  handler,
		body:     body,
		params:   params,
	}
	m.containers[c.id] = c
	running, generation := m.running, m.generation
	m.mu.Unlock()

	closeFn := m.closeFunc(c)
	if !running {
		return closeFn, nil
	}

	if err = m.connect(ctx, c, generation); err != nil && !errors.Is(err, adapter.ErrOffline) {
		return closeFn, fmt.Errorf("connect container %d: %w", c.id, err)
	}
	return closeFn, nil
}

// HasContainer reports whether the container is still registered.
func (m *CommunicationManager) HasContainer(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.containers[id]
	return ok
}

func (m *CommunicationManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// StartCommunication opens the stream of every registered container and
// returns once every attempt finished. It is a no-op while already running.
// Failures are logged and never keep other containers from connecting. A
// StopCommunication in between aborts the pending attempts.
func (m *CommunicationManager) StartCommunication(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.generation++
	generation := m.generation
	containers := make([]*streamContainer, 0, len(m.containers))
	for _, c := range m.containers {
		containers = append(containers, c)
	}
	listeners := append([]func(context.Context){}, m.listeners...)
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "CommunicationManager.StartCommunication").
		Int("containers", len(containers)).
		Msg("starting communication")

	g, gCtx := errgroup.WithContext(ctx)
	for _, c := range containers {
		g.Go(func() error {
			err := m.connect(gCtx, c, generation)
			if err != nil && !errors.Is(err, adapter.ErrOffline) {
				m.logger.Error().Err(err).
					Str("func", "CommunicationManager.StartCommunication").
					Int("container_id", c.id).
					Str("endpoint", c.endpoint.Name).
					Msg("failed to connect")
			}
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	current := m.running && m.generation == generation
	m.mu.Unlock()
	if !current {
		return
	}

	for _, listener := range listeners {
		listener(ctx)
	}
}

// StopCommunication closes every stream and aborts pending opens but keeps
// the containers, so the next StartCommunication re-establishes them.
func (m *CommunicationManager) StopCommunication() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	var (
		streams []adapter.Stream
		cancels []context.CancelFunc
	)
	for _, c := range m.containers {
		s, cancel := c.detach()
		if s != nil {
			streams = append(streams, s)
		}
		if cancel != nil {
			cancels = append(cancels, cancel)
		}
	}
	m.mu.Unlock()

	for _, s := range streams {
		s.Close()
	}
	for _, cancel := range cancels {
		cancel()
	}

	m.logger.Info().
		Str("func", "CommunicationManager.StopCommunication").
		Int("closed_streams", len(streams)).
		Int("aborted", len(cancels)-len(streams)).
		Msg("communication stopped")
}

// Run reacts to connectivity events until ctx is done or events is closed.
// Boot and online start communication in the background, offline stops it.
// Run returns after every start it launched has finished.
func (m *CommunicationManager) Run(ctx context.Context, events <-chan models.ConnectivityEvent) error {
	defer func() {
		m.StopCommunication()
		m.starts.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			m.logger.Debug().Str("func", "CommunicationManager.Run").Stringer("event", event).Msg("connectivity event")

			switch event {
			case models.EventBooted, models.EventOnline:
				m.starts.Go(func() { m.StartCommunication(ctx) })
			case models.EventOffline:
				m.StopCommunication()
			}
		}
	}
}

func (m *CommunicationManager) closeFunc(c *streamContainer) CloseFunc {
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.containers, c.id)
			s, cancel := c.detach()
			m.mu.Unlock()

			releaseStream(s, cancel)
		})
	}
}

// connect opens the container's stream with a fresh snapshot of its
// params and body. The open is aborted by ctx, StopCommunication or the
// container's CloseFunc; the stream itself outlives ctx. Nothing is opened
// once the start that requested it has been stopped. An offline result is
// reported before it is returned, an aborted open returns nil.
func (m *CommunicationManager) connect(ctx context.Context, c *streamContainer, generation int) error {
	m.mu.Lock()
	if c.stream != nil || c.cancel != nil || !m.running || m.generation != generation {
		m.mu.Unlock()
		return nil
	}
	openCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.attempt++
	attempt := c.attempt
	m.mu.Unlock()

	req := adapter.StreamRequest{Endpoint: c.endpoint, TraceID: utils.NewTraceID()}
	if c.body != nil {
		req.Body = c.body()
	}
	if c.params != nil {
		req.Params = c.params()
	}

	stopAbort := context.AfterFunc(ctx, cancel)
	stream, err := m.transport.Open(openCtx, req)
	notAborted := stopAbort()

	m.mu.Lock()
	current := c.attempt == attempt && c.cancel != nil
	_, registered := m.containers[c.id]
	if err != nil || !current || !registered || !m.running || !notAborted {
		if current {
			c.cancel = nil
		}
		m.mu.Unlock()
		releaseStream(stream, cancel)

		switch {
		case err == nil, openCtx.Err() != nil:
			m.logger.Debug().
				Str("func", "CommunicationManager.connect").
				Int("container_id", c.id).
				Msg("open aborted")
			return nil
		case errors.Is(err, adapter.ErrOffline):
			m.logger.Debug().Err(err).
				Str("func", "CommunicationManager.connect").
				Int("container_id", c.id).
				Msg("server unreachable")
			m.offline.GoOffline(err)
		}
		return err
	}
	c.stream = stream
	m.mu.Unlock()

	m.logger.Debug().
		Str("func", "CommunicationManager.connect").
		Int("container_id", c.id).
		Str("trace_id", req.TraceID).
		Msg("stream connected")

	go m.consume(ctx, c, stream)
	return nil
}

func (m *CommunicationManager) consume(ctx context.Context, c *streamContainer, stream adapter.Stream) {
	ctx = context.WithoutCancel(ctx)
	for message := range stream.Messages() {
		c.handler(ctx, message)
	}
	<-stream.Done()

	m.mu.Lock()
	var cancel context.CancelFunc
	if c.stream == stream {
		_, cancel = c.detach()
	}
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	err := stream.Err()
	log := m.logger.With().
		Str("func", "CommunicationManager.consume").
		Int("container_id", c.id).
		Str("endpoint", c.endpoint.Name).
		Logger()

	switch {
	case err == nil:
		log.Debug().Msg("stream closed")
	case errors.Is(err, adapter.ErrOffline):
		log.Info().Err(err).Msg("stream lost, server unreachable")
		m.offline.GoOffline(err)
	default:
		log.Error().Err(err).Msg("stream terminated")
	}
}
