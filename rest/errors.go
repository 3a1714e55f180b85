package rest

import "errors"

// Errors returned by Server construction and ServerContext parameter
// lookups.
var (
	ErrNilOptions            = errors.New("rest: server options must not be nil")
	ErrInvalidID             = errors.New("rest: server id must not be empty")
	ErrInvalidListenHost     = errors.New("rest: listen host must not be empty")
	ErrInvalidListenPort     = errors.New("rest: listen port must be greater than zero")
	ErrInvalidPrivateKeyPath = errors.New("rest: private key path is required when TLS is enabled")
	ErrInvalidCertPath       = errors.New("rest: cert path is required when TLS is enabled")
	ErrInvalidParamType      = errors.New("rest: unsupported parameter type")
)
