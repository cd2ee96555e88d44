package passtools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name      string
		setting   string
		operation string
		expected  string
	}{
		{
			name:      "url",
			setting:   SettingURL,
			operation: "Pass.list",
			expected:  "You must configure API url before calling Pass.list",
		},
		{
			name:      "api key",
			setting:   SettingAPIKey,
			operation: "Pass.show",
			expected:  "You must configure api_key before calling Pass.show",
		},
		{
			name:     "no operation",
			setting:  SettingAPIKey,
			expected: "You must configure api_key before calling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigurationError(tt.setting, tt.operation)
			assert.Equal(t, tt.expected, err.Error())
			assert.Equal(t, tt.setting, err.Setting)
		})
	}
}

func TestAPIError_Payload(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "400 Bad Request"}

	assert.Equal(t, "400 Bad Request", err.Error())
	assert.Equal(t, RawResponse{"message": "400 Bad Request", "statusCode": 400}, err.Payload())
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Method: "GET", URL: "http://foobar.com/pass", Err: context.DeadlineExceeded}

	assert.Equal(t, "GET http://foobar.com/pass: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorPredicates(t *testing.T) {
	cfgErr := fmt.Errorf("wrapped: %w", NewConfigurationError(SettingURL, ""))
	apiErr := fmt.Errorf("wrapped: %w", &APIError{StatusCode: 404, Message: "404 Not Found"})
	transportErr := fmt.Errorf("wrapped: %w", &TransportError{Err: errors.New("connection refused")})

	assert.True(t, IsConfigurationError(cfgErr))
	assert.False(t, IsConfigurationError(apiErr))

	assert.True(t, IsAPIError(apiErr))
	assert.False(t, IsAPIError(transportErr))

	assert.True(t, IsTransportError(transportErr))
	assert.False(t, IsTransportError(cfgErr))

	assert.True(t, IsNotFound(apiErr))
	assert.False(t, IsNotFound(transportErr))

	decodeErr := fmt.Errorf("wrapped: %w", &DecodeError{StatusCode: 200, Err: errors.New("invalid character")})
	assert.True(t, IsDecodeError(decodeErr))
	assert.False(t, IsDecodeError(transportErr))
	assert.False(t, IsTransportError(decodeErr))
	assert.Equal(t, "wrapped: decoding 200 response body: invalid character", decodeErr.Error())
}

func TestRawResponse_ErrorPayload(t *testing.T) {
	t.Run("success payload", func(t *testing.T) {
		raw := RawResponse{"id": 10}

		assert.False(t, raw.IsError())
		assert.Nil(t, raw.Err())
		assert.Equal(t, 0, raw.StatusCode())
	})

	t.Run("message without status code", func(t *testing.T) {
		raw := RawResponse{"id": 10, "message": "hello"}

		assert.False(t, raw.IsError())
		assert.Nil(t, raw.Err())
	})

	t.Run("error payload", func(t *testing.T) {
		raw := RawResponse{"message": "400 Bad Request", "statusCode": 400}

		msg, ok := raw.Message()
		assert.True(t, ok)
		assert.Equal(t, "400 Bad Request", msg)
		assert.True(t, raw.IsError())
		assert.Equal(t, &APIError{StatusCode: 400, Message: "400 Bad Request"}, raw.Err())
	})
}

func TestWriteResult_OK(t *testing.T) {
	var nilResult *WriteResult

	assert.False(t, nilResult.OK())
	assert.False(t, (&WriteResult{StatusCode: 400}).OK())
	assert.True(t, (&WriteResult{Success: true, StatusCode: 200}).OK())
}
