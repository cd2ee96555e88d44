package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/passtools/passtools-go/internal/client"
	"github.com/passtools/passtools-go/pkg/passtools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires settings", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil, &Config{})
		require.ErrorIs(t, err, passtools.ErrSettingsRequired)
	})

	t.Run("creates client without configuration", func(t *testing.T) {
		t.Parallel()

		client, err := New(passtools.NewSettings(passtools.Configuration{}), nil)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, client.Passes())
	})

	t.Run("creates client with transport options", func(t *testing.T) {
		t.Parallel()

		config := &Config{
			Debug:        true,
			UserAgent:    "passtools-test/1.0",
			HTTPTimeout:  5 * time.Second,
			RetryMax:     2,
			RetryWaitMin: time.Millisecond,
			RetryWaitMax: 5 * time.Millisecond,
			Concurrency:  2,
		}

		client, err := New(passtools.NewSettings(passtools.Configuration{URL: "https://api.example.com"}), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_SharesSettings(t *testing.T) {
	t.Parallel()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "reconfigured", request.URL.Query().Get("api_key"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"passes":[]}`))
	}))
	defer server.Close()

	settings := passtools.NewSettings(passtools.Configuration{URL: server.URL})

	client, err := New(settings, nil)
	require.NoError(t, err)
	assert.Same(t, settings, client.Settings())

	_, err = client.Passes().List(context.Background())
	require.Error(t, err)
	assert.True(t, passtools.IsConfigurationError(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))

	settings.Configure(passtools.Options{APIKey: passtools.String("reconfigured")})

	raw, err := client.Passes().List(context.Background())
	require.NoError(t, err)
	assert.False(t, raw.IsError())
	assert.Contains(t, raw, "passes")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_RetryConfig(t *testing.T) {
	t.Parallel()

	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			writer.WriteHeader(http.StatusBadGateway)

			return
		}

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	settings := passtools.NewSettings(passtools.Configuration{URL: server.URL, APIKey: "key"})

	client, err := New(settings, &Config{
		RetryMax:     3,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	result, err := client.Passes().Push(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}
