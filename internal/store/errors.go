package store

import "errors"

// Update slot errors.
var (
	// ErrSlotClosed is returned when a slot is used after Commit or Discard.
	ErrSlotClosed = errors.New("update slot is closed")

	// ErrSlotUnavailable is returned when waiting for a slot was cancelled.
	ErrSlotUnavailable = errors.New("update slot unavailable")
)

// Repository errors. Callers should use [errors.Is] to match against these
// values.
var (
	// ErrNotFound is returned when a requested model does not exist.
	ErrNotFound = errors.New("model is not found")

	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when a transaction cannot start.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing a transaction fails.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRows is returned when scanning a result row fails.
	ErrScanningRows = errors.New("failed to scan model rows")

	// ErrInvalidModelData is returned when a stored payload is not a JSON object.
	ErrInvalidModelData = errors.New("invalid model data")
)
