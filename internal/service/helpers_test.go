package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// fakeStream is a hand-driven adapter.Stream.
type fakeStream struct {
	messages chan json.RawMessage
	done     chan struct{}

	mu     sync.Mutex
	err    error
	once   sync.Once
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		messages: make(chan json.RawMessage),
		done:     make(chan struct{}),
	}
}

func (f *fakeStream) Messages() <-chan json.RawMessage { return f.messages }
func (f *fakeStream) Done() <-chan struct{}            { return f.done }

func (f *fakeStream) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeStream) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.finish(nil)
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// finish terminates the stream with err.
func (f *fakeStream) finish(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.messages)
		close(f.done)
	})
}

func (f *fakeStream) send(message string) {
	f.messages <- json.RawMessage(message)
}

// fakeReporter records GoOffline calls.
type fakeReporter struct {
	calls chan error
}

func newFakeReporter() *fakeReporter {
	return &fakeReporter{calls: make(chan error, 16)}
}

func (r *fakeReporter) GoOffline(reason error) {
	r.calls <- reason
}

type connectCall struct {
	endpoint string
	handler  MessageHandler
	body     BodyGetter
	closed   bool
}

// fakeCommunicator records Connect calls and hands out their handlers.
type fakeCommunicator struct {
	mu        sync.Mutex
	calls     []*connectCall
	listeners []func(ctx context.Context)

	err       error
	noCloseFn bool
}

func (c *fakeCommunicator) Connect(
	_ context.Context,
	endpointName string,
	handler MessageHandler,
	body BodyGetter,
	_ ParamsGetter,
) (CloseFunc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := &connectCall{endpoint: endpointName, handler: handler, body: body}
	c.calls = append(c.calls, call)
	if c.noCloseFn {
		return nil, c.err
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		call.closed = true
	}, c.err
}

func (c *fakeCommunicator) OnStartCommunication(listener func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

func (c *fakeCommunicator) call(i int) *connectCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i]
}

func (c *fakeCommunicator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *fakeCommunicator) isClosed(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i].closed
}

// delta builds ModelData from a wire message.
func delta(raw string) models.ModelData {
	var wire models.AutoupdateModelData
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		panic(err)
	}
	data, err := wire.ToModelData()
	if err != nil {
		panic(err)
	}
	return data
}

func newTestStore() *store.DataStore {
	return store.NewDataStore(logger.Nop())
}
