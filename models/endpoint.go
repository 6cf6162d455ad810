package models

import (
	"net/http"
	"strings"
)

// Endpoint is a named logical streaming endpoint a client can open requests
// against. It is immutable once registered.
type Endpoint struct {
	// Name is the registry key, e.g. "autoupdate".
	Name string

	// URL is the absolute (or base-relative) URL of the streaming request.
	URL string

	// HealthURL is polled to tell an offline client from a failing server.
	HealthURL string

	// Method is the HTTP method of the streaming request. Defaults to GET.
	Method string
}

// NormalizedMethod returns the upper-cased method or GET when none was set.
func (e Endpoint) NormalizedMethod() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(e.Method)
}

// ConnectivityEvent is a global signal the communication layer reacts to.
type ConnectivityEvent int

const (
	// EventBooted is emitted once the application finished booting.
	EventBooted ConnectivityEvent = iota + 1
	// EventOnline is emitted on every transition to online.
	EventOnline
	// EventOffline is emitted on every transition to offline.
	EventOffline
)

func (e ConnectivityEvent) String() string {
	switch e {
	case EventBooted:
		return "booted"
	case EventOnline:
		return "online"
	case EventOffline:
		return "offline"
	default:
		return "unknown"
	}
}
