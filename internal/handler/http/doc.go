// Package http implements the HTTP surface of the reference autoupdate
// server: route wiring, request handlers and middleware. Tracing, access
// logging, bearer authentication and compression are handled here before
// requests reach the service layer.
package http
