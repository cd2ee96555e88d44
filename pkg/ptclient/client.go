package ptclient

import (
	"fmt"
	"time"

	"github.com/passtools/passtools-go/internal/client"
	"github.com/passtools/passtools-go/pkg/passtools"
)

// Option configures the client built by New.
type Option func(*client.Config)

// WithLogger sets the structured logger used by the HTTP layer.
func WithLogger(logger passtools.Logger) Option {
	return func(c *client.Config) {
		c.Logger = logger
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *client.Config) {
		c.Debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *client.Config) {
		c.UserAgent = userAgent
	}
}

// WithTimeout sets the timeout of a single request attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client.Config) {
		c.HTTPTimeout = timeout
	}
}

// WithRetry retries 5xx, 429 and connection errors up to maxRetries times.
func WithRetry(maxRetries int) Option {
	return func(c *client.Config) {
		c.RetryMax = maxRetries
	}
}

// WithRetryWait bounds the backoff between retries.
func WithRetryWait(waitMin, waitMax time.Duration) Option {
	return func(c *client.Config) {
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// WithConcurrency limits the parallel requests of PushAll.
func WithConcurrency(limit int) Option {
	return func(c *client.Config) {
		c.Concurrency = limit
	}
}

// New creates a client bound to settings.
func New(settings *passtools.Settings, opts ...Option) (passtools.Client, error) {
	if settings == nil {
		return nil, passtools.ErrSettingsRequired
	}

	config := &client.Config{}
	for _, opt := range opts {
		opt(config)
	}

	c, err := client.New(settings, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithConfiguration creates a client with its own settings.
func NewWithConfiguration(configuration passtools.Configuration, opts ...Option) (passtools.Client, error) {
	return New(passtools.NewSettings(configuration), opts...)
}

// NewWithAPIKey creates a client for url authenticated with apiKey.
func NewWithAPIKey(url, apiKey string, opts ...Option) (passtools.Client, error) {
	return NewWithConfiguration(passtools.Configuration{URL: url, APIKey: apiKey}, opts...)
}
