// Package utils provides general-purpose helpers shared by the client and
// the reference server: a FIFO mutex, id generators, HTTP client
// constructors, JSON/NDJSON response writers, JWT helpers and typed context
// keys.
package utils

import (
	"context"
)

// contextKey is a private type for context keys, so keys of this package
// never collide with string keys of other packages.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey stores the authenticated user id (int64) of a request.
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext returns the user id stored under [UserIDCtxKey] and
// whether it was present with the expected type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
