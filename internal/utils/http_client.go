package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient embeds *resty.Client so callers use the resty API directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client for short request/response calls. A
// non-positive timeout leaves the request unbounded.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPClient{Client: client}
}

// NewStreamingClient returns a client for long-lived streaming responses.
// It never sets a total request timeout (that would cut the stream) and
// leaves the response body unparsed so it can be read incrementally. A
// positive headerTimeout bounds the wait for the response headers.
func NewStreamingClient(headerTimeout time.Duration) *HTTPClient {
	client := resty.New().
		SetHeader("Accept", "application/x-ndjson, application/json").
		SetDoNotParseResponse(true)
	if headerTimeout > 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = headerTimeout
		client.SetTransport(transport)
	}
	return &HTTPClient{Client: client}
}
