package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrOffline means the server could not be reached at all.
	ErrOffline = errors.New("server is unreachable")

	// ErrTransport wraps failures of a reachable server or the connection.
	ErrTransport = errors.New("transport failure")

	ErrUnauthorized = errors.New("client unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("endpoint not found")
	ErrServer       = errors.New("server error")
	ErrUnhealthy    = errors.New("server reports unhealthy")

	// ErrStreamEnded means the server finished the response.
	ErrStreamEnded = errors.New("stream ended by server")

	// ErrMessageTooLarge means a message exceeded the configured limit.
	ErrMessageTooLarge = errors.New("stream message too large")

	// ErrMalformedMessage means a message was not a JSON object.
	ErrMalformedMessage = errors.New("malformed stream message")

	ErrEndpointNotFound = errors.New("endpoint is not registered")
	ErrEndpointConflict = errors.New("endpoint is already registered with a different definition")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
)

// StreamError is an error reported by the server inside the stream, as a
// message of the form {"error": {"type": "...", "msg": "..."}} or
// {"error": "..."}.
type StreamError struct {
	Type    string
	Message string
}

func (e *StreamError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("server stream error: %s", e.Message)
	}
	return fmt.Sprintf("server stream error %s: %s", e.Type, e.Message)
}
