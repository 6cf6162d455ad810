// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
)

const (
	// DefaultMaxMessageSize bounds one newline-delimited message.
	DefaultMaxMessageSize = 64 << 20

	// TraceIDHeader carries the id of one connection attempt.
	TraceIDHeader = "X-Trace-ID"

	maxErrorBodySize = 4 << 10
)

type httpStreamTransport struct {
	stream *utils.HTTPClient
	health *utils.HTTPClient

	token          string
	maxMessageSize int

	logger *logger.Logger
}

// NewHTTPStreamTransport constructs the HTTP implementation of
// [StreamTransport]. Streams are never bounded by a timeout once the
// response headers arrived; waiting for the headers and health checks use
// cfg.RequestTimeout.
func NewHTTPStreamTransport(cfg config.ClientAdapter, log *logger.Logger) StreamTransport {
	return &httpStreamTransport{
		stream:         utils.NewStreamingClient(cfg.RequestTimeout),
		health:         utils.NewHTTPClient(cfg.RequestTimeout),
		token:          strings.TrimSpace(cfg.AuthToken),
		maxMessageSize: DefaultMaxMessageSize,
		logger:         log,
	}
}

// Open implements [StreamTransport].
func (t *httpStreamTransport) Open(ctx context.Context, req StreamRequest) (Stream, error) {
	if req.TraceID == "" {
		req.TraceID = utils.NewTraceID()
	}
	log := t.logger.With().
		Str("endpoint", req.Endpoint.Name).
		Str("trace_id", req.TraceID).
		Logger()

	streamCtx, cancel := context.WithCancel(ctx)

	r := t.stream.R().
		SetContext(streamCtx).
		SetHeader(TraceIDHeader, req.TraceID)
	if len(req.Params) > 0 {
		r.SetQueryParamsFromValues(req.Params)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	if t.token != "" {
		r.SetAuthToken(t.token)
	}

	resp, err := r.Execute(req.Endpoint.NormalizedMethod(), req.Endpoint.URL)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("open stream %s: %w", req.Endpoint.Name, ctx.Err())
		}
		err = t.classify(ctx, req.Endpoint.HealthURL, err)
		log.Debug().Err(err).Str("func", "httpStreamTransport.Open").Msg("connect failed")
		return nil, err
	}

	body := resp.RawBody()
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
		body.Close()
		cancel()

		err = mapHTTPError(status, string(errBody))
		if isGatewayStatus(status) {
			err = t.classify(ctx, req.Endpoint.HealthURL, err)
		}
		log.Debug().Err(err).Str("func", "httpStreamTransport.Open").Int("status", status).Msg("stream rejected")
		return nil, err
	}

	s := &httpStream{
		body:     body,
		cancel:   cancel,
		ctx:      streamCtx,
		messages: make(chan json.RawMessage),
		done:     make(chan struct{}),
		maxSize:  t.maxMessageSize,
	}
	go s.read(func(readErr error) error {
		// ctx is the caller's context; the stream's own one is cancelled by now
		return t.classify(ctx, req.Endpoint.HealthURL, readErr)
	})

	log.Debug().Str("func", "httpStreamTransport.Open").Msg("stream opened")
	return s, nil
}

// CheckHealth implements [StreamTransport].
func (t *httpStreamTransport) CheckHealth(ctx context.Context, healthURL string) error {
	resp, err := t.health.R().SetContext(ctx).Get(healthURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrOffline, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: http %d", ErrUnhealthy, resp.StatusCode())
	}
	return nil
}

// classify decides whether err means the server is unreachable by asking
// the health endpoint.
func (t *httpStreamTransport) classify(ctx context.Context, healthURL string, err error) error {
	if healthURL == "" {
		return fmt.Errorf("%w: %w", ErrOffline, err)
	}

	healthErr := t.CheckHealth(ctx, healthURL)
	if errors.Is(healthErr, ErrOffline) {
		return fmt.Errorf("%w: %w", ErrOffline, err)
	}
	if errors.Is(err, ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

type httpStream struct {
	body   io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc

	messages chan json.RawMessage
	done     chan struct{}
	maxSize  int

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *httpStream) Messages() <-chan json.RawMessage { return s.messages }

func (s *httpStream) Done() <-chan struct{} { return s.done }

func (s *httpStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *httpStream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.body.Close()
	<-s.done
}

func (s *httpStream) read(classify func(error) error) {
	defer close(s.done)
	defer close(s.messages)
	defer s.body.Close()

	err := s.readLoop()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	switch {
	case closed || s.ctx.Err() != nil:
		err = nil
	case errors.Is(err, io.EOF):
		err = classify(ErrStreamEnded)
	case err != nil && !isProtocolError(err):
		err = classify(err)
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *httpStream) readLoop() error {
	reader := bufio.NewReaderSize(s.body, 64<<10)

	for {
		line, readErr := readLine(reader, s.maxSize)
		if len(bytes.TrimSpace(line)) > 0 {
			message, err := parseMessage(line)
			if err != nil {
				return err
			}
			select {
			case s.messages <- message:
			case <-s.ctx.Done():
				return s.ctx.Err()
			}
		}
		if readErr != nil {
			return readErr
		}
	}
}

// readLine reads up to and excluding the next '\n'. A final line without a
// newline is returned together with io.EOF.
func readLine(reader *bufio.Reader, maxSize int) ([]byte, error) {
	var line []byte
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(line)+len(chunk) > maxSize+1 {
			return nil, ErrMessageTooLarge
		}
		line = append(line, chunk...)

		switch {
		case err == nil:
			return line[:len(line)-1], nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return line, err
		}
	}
}

func parseMessage(line []byte) (json.RawMessage, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' || !json.Valid(line) {
		return nil, ErrMalformedMessage
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if len(envelope.Error) > 0 && !bytes.Equal(envelope.Error, []byte("null")) {
		return nil, parseStreamError(envelope.Error)
	}

	return json.RawMessage(bytes.Clone(line)), nil
}

func parseStreamError(raw json.RawMessage) *StreamError {
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		return &StreamError{Type: detail.Type, Message: detail.Message}
	}

	var message string
	if err := json.Unmarshal(raw, &message); err == nil {
		return &StreamError{Message: message}
	}
	return &StreamError{Message: string(raw)}
}

func isProtocolError(err error) bool {
	var streamErr *StreamError
	return errors.As(err, &streamErr) ||
		errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrMessageTooLarge)
}
