package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptyAPIKey         = errors.New("API key cannot be empty")
	ErrMissingConfigValue  = errors.New("a value is required for configuration key")
	ErrInvalidOutputFormat = errors.New("output must be one of table, json, yaml")
	ErrInvalidRetries      = errors.New("retries must be a non-negative integer")
)

// Command errors.
var (
	ErrWriteRejected   = errors.New("the server rejected the request")
	ErrInvalidPassData = errors.New("invalid pass data, expected a JSON object")
)
