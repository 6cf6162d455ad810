package service

import (
	"sync"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// ConnectivityService tracks whether the server is reachable and emits a
// [models.ConnectivityEvent] on every boot and state transition. Events are
// queued without bound so emitting never blocks the caller; they are
// delivered on Events in emission order.
type ConnectivityService struct {
	mu     sync.Mutex
	online bool
	booted bool
	closed bool
	queue  []models.ConnectivityEvent

	notify chan struct{}
	events chan models.ConnectivityEvent
	stop   chan struct{}
	done   chan struct{}

	logger *logger.Logger
}

// NewConnectivityService starts in the online state; [ConnectivityService.Booted]
// has to be called once the application is ready.
func NewConnectivityService(log *logger.Logger) *ConnectivityService {
	c := &ConnectivityService{
		online: true,
		notify: make(chan struct{}, 1),
		events: make(chan models.ConnectivityEvent),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: log,
	}
	go c.pump()
	return c
}

// Events is closed by Close.
func (c *ConnectivityService) Events() <-chan models.ConnectivityEvent {
	return c.events
}

// Booted emits [models.EventBooted] the first time it is called.
func (c *ConnectivityService) Booted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.booted {
		return
	}
	c.booted = true
	c.emit(models.EventBooted)
}

// GoOffline implements [OfflineReporter].
func (c *ConnectivityService) GoOffline(reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.online {
		return
	}
	c.online = false
	c.logger.Info().Err(reason).Str("func", "ConnectivityService.GoOffline").Msg("went offline")
	c.emit(models.EventOffline)
}

func (c *ConnectivityService) GoOnline() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.online {
		return
	}
	c.online = true
	c.logger.Info().Str("func", "ConnectivityService.GoOnline").Msg("back online")
	c.emit(models.EventOnline)
}

func (c *ConnectivityService) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Close stops the delivery of events and closes Events.
func (c *ConnectivityService) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
}

// emit must be called with c.mu held.
func (c *ConnectivityService) emit(event models.ConnectivityEvent) {
	if c.closed {
		return
	}
	c.queue = append(c.queue, event)
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *ConnectivityService) pump() {
	defer close(c.done)
	defer close(c.events)

	for {
		c.mu.Lock()
		var (
			event models.ConnectivityEvent
			ok    bool
		)
		if len(c.queue) > 0 {
			event, ok = c.queue[0], true
			c.queue = c.queue[1:]
		}
		c.mu.Unlock()

		if !ok {
			select {
			case <-c.notify:
				continue
			case <-c.stop:
				return
			}
		}

		select {
		case c.events <- event:
		case <-c.stop:
			return
		}
	}
}
