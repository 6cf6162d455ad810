package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/adapter"
	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/mock"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestManager(t *testing.T, ctrl *gomock.Controller) (*CommunicationManager, *mock.MockStreamTransport, *fakeReporter) {
	t.Helper()
	transport := mock.NewMockStreamTransport(ctrl)
	reporter := newFakeReporter()
	m := NewCommunicationManager(transport, adapter.NewEndpointRegistry(), reporter, logger.Nop())
	require.NoError(t, m.RegisterEndpoint("autoupdate", "http://server/system/autoupdate", "http://server/system/health", "POST"))
	return m, transport, reporter
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestRegisterEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, _, _ := newTestManager(t, ctrl)

	require.NoError(t, m.RegisterEndpoint("autoupdate", "http://server/system/autoupdate", "http://server/system/health", "post"))
	err := m.RegisterEndpoint("autoupdate", "http://other/system/autoupdate", "", "POST")
	assert.ErrorIs(t, err, adapter.ErrEndpointConflict)
}

func TestConnect_UnknownEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, _, _ := newTestManager(t, ctrl)

	closeFn, err := m.Connect(context.Background(), "missing", func(context.Context, json.RawMessage) {}, nil, nil)
	assert.ErrorIs(t, err, adapter.ErrEndpointNotFound)
	assert.Nil(t, closeFn)
}

func TestConnect_NotRunningDefersOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	received := make(chan string, 4)
	handler := func(_ context.Context, msg json.RawMessage) { received <- string(msg) }

	var bodyCalls atomic.Int32
	body := func() any {
		bodyCalls.Add(1)
		return []models.ModelRequest{{Collection: "user", IDs: []int{1}}}
	}

	closeFn, err := m.Connect(ctx, "autoupdate", handler, body, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.Zero(t, bodyCalls.Load())

	stream := newFakeStream()
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req adapter.StreamRequest) (adapter.Stream, error) {
			assert.Equal(t, "http://server/system/autoupdate", req.Endpoint.URL)
			assert.Equal(t, "POST", req.Endpoint.Method)
			assert.NotEmpty(t, req.TraceID)
			assert.Equal(t, []models.ModelRequest{{Collection: "user", IDs: []int{1}}}, req.Body)
			return stream, nil
		})

	var started atomic.Int32
	m.OnStartCommunication(func(context.Context) { started.Add(1) })

	m.StartCommunication(ctx)
	m.StartCommunication(ctx)
	assert.True(t, m.IsRunning())
	assert.EqualValues(t, 1, started.Load())
	assert.EqualValues(t, 1, bodyCalls.Load())

	stream.send(`{"user/1/username":"a"}`)
	stream.send(`{"user/1/username":"b"}`)
	assert.Equal(t, `{"user/1/username":"a"}`, <-received)
	assert.Equal(t, `{"user/1/username":"b"}`, <-received)

	closeFn()
	closeFn()
	assert.True(t, stream.isClosed())
}

func TestConnect_RunningOpensImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	m.StartCommunication(ctx)

	stream := newFakeStream()
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stream, nil)

	closeFn, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	closeFn()
	assert.True(t, stream.isClosed())
	assert.False(t, m.HasContainer(1))
}

func TestConnect_OfflineIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	ctx := context.Background()
	m.StartCommunication(ctx)

	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, adapter.ErrOffline)

	closeFn, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.ErrorIs(t, <-reporter.calls, adapter.ErrOffline)
	assert.True(t, m.HasContainer(1))
}

func TestConnect_TransportFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	ctx := context.Background()
	m.StartCommunication(ctx)

	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, adapter.ErrUnauthorized)

	closeFn, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
	require.NotNil(t, closeFn)
	assert.Empty(t, reporter.calls)

	closeFn()
	assert.False(t, m.HasContainer(1))
}

func TestStartCommunication_FailuresDoNotBlockOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	var mu sync.Mutex
	received := map[string]int{}
	for _, name := range []string{"a", "b", "c"} {
		_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {
			mu.Lock()
			received[name]++
			mu.Unlock()
		}, func() any { return name }, nil)
		require.NoError(t, err)
	}

	streams := map[string]*fakeStream{"a": newFakeStream(), "c": newFakeStream()}
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req adapter.StreamRequest) (adapter.Stream, error) {
			if req.Body == "b" {
				return nil, errors.New("boom")
			}
			return streams[req.Body.(string)], nil
		}).Times(3)

	m.StartCommunication(ctx)

	streams["a"].send(`{}`)
	streams["c"].send(`{}`)
	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received["a"] == 1 && received["c"] == 1
	})
}

func TestStopCommunication_KeepsContainers(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	ctx := context.Background()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	first, second := newFakeStream(), newFakeStream()
	gomock.InOrder(
		transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(first, nil),
		transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(second, nil),
	)

	m.StartCommunication(ctx)
	m.StopCommunication()
	m.StopCommunication()

	assert.False(t, m.IsRunning())
	assert.True(t, first.isClosed())
	assert.True(t, m.HasContainer(1))
	assert.Empty(t, reporter.calls)

	m.StartCommunication(ctx)
	assert.False(t, second.isClosed())
	m.StopCommunication()
	assert.True(t, second.isClosed())
}

func TestStream_OfflineTermination(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	ctx := context.Background()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	stream := newFakeStream()
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stream, nil)
	m.StartCommunication(ctx)

	stream.finish(adapter.ErrOffline)

	select {
	case reason := <-reporter.calls:
		assert.ErrorIs(t, reason, adapter.ErrOffline)
	case <-time.After(2 * time.Second):
		t.Fatal("offline was not reported")
	}
}

func TestStream_OtherTerminationLeavesContainer(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	ctx := context.Background()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	stream := newFakeStream()
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stream, nil)
	m.StartCommunication(ctx)

	stream.finish(adapter.ErrStreamEnded)
	eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.containers[1].stream == nil
	})
	assert.Empty(t, reporter.calls)
	assert.True(t, m.HasContainer(1))
}

func TestRun_ReactsToEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	var opened []*fakeStream
	var mu sync.Mutex
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, adapter.StreamRequest) (adapter.Stream, error) {
			s := newFakeStream()
			mu.Lock()
			opened = append(opened, s)
			mu.Unlock()
			return s, nil
		}).Times(2)

	events := make(chan models.ConnectivityEvent)
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx, events) }()

	openedCount := func(n int) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(opened) == n
		}
	}

	events <- models.EventBooted
	eventually(t, openedCount(1))
	assert.True(t, m.IsRunning())

	events <- models.EventOffline
	eventually(t, func() bool { return !m.IsRunning() })

	events <- models.EventOnline
	eventually(t, openedCount(2))
	assert.True(t, m.IsRunning())

	cancel()
	assert.ErrorIs(t, <-runErr, context.Canceled)
	assert.False(t, m.IsRunning())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, opened, 2)
	assert.True(t, opened[0].isClosed())
	assert.True(t, opened[1].isClosed())
}

func TestRun_ClosedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, _, _ := newTestManager(t, ctrl)

	events := make(chan models.ConnectivityEvent)
	close(events)
	assert.NoError(t, m.Run(context.Background(), events))
}

// Going offline and back online resubmits every active request exactly once.
func TestAutoupdate_ReconnectResubmitsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	mapper := NewCollectionMapper()
	require.NoError(t, RegisterDefaultCollections(mapper))
	dataStore := newTestStore()
	svc := NewAutoupdateService(m, dataStore, mapper, NewModelRequestBuilder(mapper), nil, logger.Nop())

	var mu sync.Mutex
	opens := map[string]int{}
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req adapter.StreamRequest) (adapter.Stream, error) {
			body := req.Body.([]models.ModelRequest)
			mu.Lock()
			opens[body[0].Collection]++
			mu.Unlock()
			return newFakeStream(), nil
		}).AnyTimes()

	_, err := svc.Request(ctx, models.ModelRequest{Collection: "user", IDs: []int{1}})
	require.NoError(t, err)
	_, err = svc.Request(ctx, models.ModelRequest{Collection: "meeting", IDs: []int{1}})
	require.NoError(t, err)

	m.StartCommunication(ctx)
	m.StopCommunication()
	m.StartCommunication(ctx)

	mu.Lock()
	assert.Equal(t, map[string]int{"user": 2, "meeting": 2}, opens)
	mu.Unlock()
	assert.Len(t, svc.ActiveRequests(), 2)

	m.mu.Lock()
	assert.Len(t, m.containers, 2)
	m.mu.Unlock()
}

// blockingOpen stands in for a server that accepts the request and never
// answers: Open returns only when its context ends.
func blockingOpen(started chan<- struct{}) func(context.Context, adapter.StreamRequest) (adapter.Stream, error) {
	return func(ctx context.Context, _ adapter.StreamRequest) (adapter.Stream, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func TestRun_StalledOpenDoesNotBlockEvents(t *testing.T) {
	opened := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opened <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	// no request timeout, so nothing but the manager can end the open
	transport := adapter.NewHTTPStreamTransport(config.ClientAdapter{}, logger.Nop())
	reporter := newFakeReporter()
	m := NewCommunicationManager(transport, adapter.NewEndpointRegistry(), reporter, logger.Nop())
	require.NoError(t, m.RegisterEndpoint("autoupdate", srv.URL+"/system/autoupdate", srv.URL+"/system/health", "POST"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	events := make(chan models.ConnectivityEvent)
	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx, events) }()

	waitOpened := func() {
		t.Helper()
		select {
		case <-opened:
		case <-time.After(2 * time.Second):
			t.Fatal("stream was not requested")
		}
	}

	events <- models.EventBooted
	waitOpened()

	select {
	case events <- models.EventOffline:
	case <-time.After(2 * time.Second):
		t.Fatal("offline event was not accepted while an open was pending")
	}
	eventually(t, func() bool { return !m.IsRunning() })
	assert.Empty(t, reporter.calls)

	events <- models.EventOnline
	waitOpened()
	assert.True(t, m.IsRunning())

	cancel()
	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, m.IsRunning())
	assert.True(t, m.HasContainer(1))
}

func TestConnect_CallerCancelAbortsOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, reporter := newTestManager(t, ctrl)
	m.StartCommunication(context.Background())

	started := make(chan struct{}, 1)
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(blockingOpen(started))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	closeFn, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.Empty(t, reporter.calls)
	assert.True(t, m.HasContainer(1))

	// the aborted attempt does not block the next one
	stream := newFakeStream()
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stream, nil)
	m.StopCommunication()
	m.StartCommunication(context.Background())

	closeFn()
	assert.True(t, stream.isClosed())
}

func TestCloseFunc_AbortsPendingOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	closeFn, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	started := make(chan struct{}, 1)
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(blockingOpen(started))

	var listened atomic.Int32
	m.OnStartCommunication(func(context.Context) { listened.Add(1) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.StartCommunication(ctx)
	}()

	<-started
	closeFn()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StartCommunication did not return after the container was closed")
	}
	assert.False(t, m.HasContainer(1))
	assert.True(t, m.IsRunning())
	assert.EqualValues(t, 1, listened.Load())
}

func TestStopCommunication_SkipsListenersOfAbortedStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, transport, _ := newTestManager(t, ctrl)
	ctx := context.Background()

	_, err := m.Connect(ctx, "autoupdate", func(context.Context, json.RawMessage) {}, nil, nil)
	require.NoError(t, err)

	started := make(chan struct{}, 1)
	transport.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(blockingOpen(started))

	var listened atomic.Int32
	m.OnStartCommunication(func(context.Context) { listened.Add(1) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.StartCommunication(ctx)
	}()

	<-started
	m.StopCommunication()
	<-done

	assert.False(t, m.IsRunning())
	assert.Zero(t, listened.Load())
	assert.True(t, m.HasContainer(1))
}
