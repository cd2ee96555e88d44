package passtools

import (
	"errors"
	"fmt"
)

// Setting names used in configuration errors.
const (
	SettingURL         = "url"
	SettingAPIKey      = "api_key"
	SettingDownloadDir = "download_dir"
)

// ConfigurationError reports a missing or invalid setting. It is returned
// before any request is attempted.
type ConfigurationError struct {
	Setting string `json:"setting" yaml:"setting"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// APIError represents a non-2xx response from the PassTools API.
type APIError struct {
	StatusCode int    `json:"statusCode" yaml:"statusCode"`
	Message    string `json:"message"    yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Payload returns the error in the shape callers see in a RawResponse.
func (e *APIError) Payload() RawResponse {
	return RawResponse{
		"message":    e.Message,
		"statusCode": e.StatusCode,
	}
}

// TransportError wraps a failure to reach the server at all: DNS, refused
// connections, timeouts and cancelled contexts.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a 2xx response whose body is not JSON. The request
// reached the server, so it is neither a transport nor an API error.
type DecodeError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %d response body: %v", e.StatusCode, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Static errors for err113 compliance.
var (
	ErrSettingsRequired = errors.New("settings are required")
	ErrUnknownField     = errors.New("unknown pass field")
	ErrInvalidPassID    = errors.New("invalid pass id")
	ErrNoPassIDs        = errors.New("at least one pass id is required")
)

// NewConfigurationError builds the "You must configure ..." error for a setting.
func NewConfigurationError(setting, operation string) *ConfigurationError {
	name := setting
	if setting == SettingURL {
		name = "API url"
	}

	msg := "You must configure " + name + " before calling"
	if operation != "" {
		msg += " " + operation
	}

	return &ConfigurationError{Setting: setting, Message: msg}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	cfgErr := &ConfigurationError{}

	return errors.As(err, &cfgErr)
}

// IsAPIError reports whether err is or wraps an APIError.
func IsAPIError(err error) bool {
	apiErr := &APIError{}

	return errors.As(err, &apiErr)
}

// IsTransportError reports whether err is or wraps a TransportError.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// IsDecodeError reports whether err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	decodeErr := &DecodeError{}

	return errors.As(err, &decodeErr)
}

// IsNotFound checks if the error is an API error with status 404.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}
