// Package server runs the reference autoupdate server: HTTP startup, signal
// handling and graceful shutdown.
package server
