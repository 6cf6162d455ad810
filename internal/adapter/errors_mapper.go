package adapter

import (
	"fmt"
	"net/http"
	"strings"
)

// mapHTTPError converts a non-2xx response status into a sentinel error.
func mapHTTPError(status int, body string) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body = strings.TrimSpace(body)
	if body == "" {
		body = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrServer, status, body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrTransport, status, body)
	}
}

// isGatewayStatus reports statuses a proxy returns when the upstream server
// is gone, which calls for a health check.
func isGatewayStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
