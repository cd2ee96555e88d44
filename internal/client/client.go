package client

import (
	"time"

	"github.com/passtools/passtools-go/internal/constants"
	"github.com/passtools/passtools-go/internal/http"
	"github.com/passtools/passtools-go/pkg/passtools"
)

// Config holds the optional transport settings of a Client.
type Config struct {
	// Logger: optional structured logger used by the HTTP layer.
	Logger passtools.Logger
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout: overall timeout of a single request attempt.
	HTTPTimeout time.Duration
	// RetryMax: retries for 5xx, 429 and connection errors. 0 disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Concurrency: limit of parallel requests in PushAll.
	Concurrency int
}

// Client implements the passtools.Client interface.
type Client struct {
	httpClient *http.Client
	settings   *passtools.Settings
	logger     passtools.Logger

	passes *PassesClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client bound to settings. Settings are read on every call,
// so later Configure calls take effect immediately.
func New(settings *passtools.Settings, config *Config) (*Client, error) {
	if settings == nil {
		return nil, passtools.ErrSettingsRequired
	}

	if config == nil {
		config = &Config{}
	}

	httpClient := http.NewClient(settings, createHTTPClientOptions(config)...)

	logger := config.Logger
	if logger == nil {
		logger = passtools.NopLogger{}
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &Client{
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
		passes:     NewPassesClient(httpClient, logger, concurrency),
	}, nil
}

// Passes implements passtools.Client.Passes.
func (c *Client) Passes() passtools.PassesClient {
	return c.passes
}

// Settings implements passtools.Client.Settings.
func (c *Client) Settings() *passtools.Settings {
	return c.settings
}
