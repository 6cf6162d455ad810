package service

import "errors"

var (
	ErrUnknownCollection           = errors.New("collection is not registered")
	ErrUnknownFieldset             = errors.New("fieldset is not registered")
	ErrUnknownRelation             = errors.New("relation is not registered")
	ErrFollowTooDeep               = errors.New("follow nesting too deep")
	ErrInvalidCollectionDefinition = errors.New("invalid collection definition")

	// ErrReconciliationPanic is returned by HandleAutoupdate when applying a
	// delta panicked. The lock and the update slot are released before.
	ErrReconciliationPanic = errors.New("autoupdate reconciliation panicked")

	ErrSubscriptionClosed = errors.New("model subscription is closed")
	ErrContainerNotFound  = errors.New("stream container not found")

	ErrResolveTooDeep = errors.New("model request resolution too deep")
)

// ErrInvalidModelKey is returned for an empty collection or a non-positive id.
var ErrInvalidModelKey = errors.New("invalid collection or id")
