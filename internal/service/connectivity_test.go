package service

import (
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, c *ConnectivityService) models.ConnectivityEvent {
	t.Helper()
	select {
	case event := <-c.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("no connectivity event")
		return 0
	}
}

func TestConnectivityService_Transitions(t *testing.T) {
	c := NewConnectivityService(logger.Nop())
	defer c.Close()

	assert.True(t, c.IsOnline())

	// emitted without a reader, delivered in order afterwards
	c.Booted()
	c.Booted()
	c.GoOnline()
	c.GoOffline(errors.New("unreachable"))
	c.GoOffline(errors.New("still unreachable"))
	assert.False(t, c.IsOnline())
	c.GoOnline()
	assert.True(t, c.IsOnline())

	assert.Equal(t, models.EventBooted, nextEvent(t, c))
	assert.Equal(t, models.EventOffline, nextEvent(t, c))
	assert.Equal(t, models.EventOnline, nextEvent(t, c))

	select {
	case event := <-c.Events():
		t.Fatalf("unexpected event %s", event)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestConnectivityService_Close(t *testing.T) {
	c := NewConnectivityService(logger.Nop())
	c.Booted()
	c.Close()
	c.Close()

	// pending events may be dropped, but the channel ends
	for range c.Events() {
	}
	c.GoOffline(errors.New("after close"))

	_, ok := <-c.Events()
	require.False(t, ok)
}
