package utils

import "github.com/google/uuid"

// NewTraceID returns a time-ordered trace id (uuid v7), falling back to a
// random v4 uuid when the v7 generator fails.
func NewTraceID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
