package models

import "errors"

// Validation and decoding errors of the wire types.
var (
	ErrEmptyCollection        = errors.New("model request has no collection")
	ErrDuplicateID            = errors.New("duplicate id in model request")
	ErrCyclicFields           = errors.New("cyclic field specification")
	ErrInvalidFieldDescriptor = errors.New("invalid field descriptor")
	ErrMalformedKey           = errors.New("malformed autoupdate key")
)
