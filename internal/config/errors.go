package config

import "errors"

// Validation errors returned by [GetClientConfig] and [GetServerConfig].
var (
	ErrInvalidAdapterConfigs      = errors.New("invalid adapter configuration")
	ErrInvalidStorageConfigs      = errors.New("invalid storage configuration")
	ErrInvalidAppConfigs          = errors.New("invalid app configuration")
	ErrInvalidWorkerConfigs       = errors.New("invalid worker configuration")
	ErrInvalidServerConfigs       = errors.New("invalid server configuration")
	ErrInvalidSubscriptionConfigs = errors.New("invalid subscription configuration")
)
