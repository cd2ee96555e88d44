// Package http dispatches requests to the PassTools API. It validates the
// shared settings before every call, attaches the API key and separates HTTP
// failures from transport failures.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/passtools/passtools-go/internal/constants"
	"github.com/passtools/passtools-go/pkg/passtools"
)

const defaultUserAgent = "passtools-go"

// Client is the HTTP dispatcher.
type Client struct {
	settings   *passtools.Settings
	httpClient *retryablehttp.Client
	logger     passtools.Logger
	debug      bool
	userAgent  string
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger passtools.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.httpClient.Logger = &leveledLogger{logger: logger}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries on 5xx, 429 and connection errors.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the timeout of a single request attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a dispatcher reading its url and API key from settings.
func NewClient(settings *passtools.Settings, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	// Hand the last response back instead of a "giving up" error so non-2xx
	// statuses surface as APIError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		settings:   settings,
		httpClient: retryClient,
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Settings returns the settings the client reads from.
func (c *Client) Settings() *passtools.Settings {
	return c.settings
}

// Request is a single API call.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	Headers   map[string]string
	Operation string
}

func (r *Request) operation() string {
	if r.Operation != "" {
		return r.Operation
	}

	return r.Method + " " + r.Path
}

// Response is a completed API call.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// JSON decodes the body, keeping numbers as json.Number. A body that is
// valid JSON but not an object is returned under passtools.ItemsKey. A body
// that is not JSON at all yields a *passtools.DecodeError.
func (r *Response) JSON() (passtools.RawResponse, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return passtools.RawResponse{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(r.Body))
	decoder.UseNumber()

	var value interface{}

	err := decoder.Decode(&value)
	if err != nil {
		return nil, &passtools.DecodeError{StatusCode: r.StatusCode, Err: err}
	}

	if object, ok := value.(map[string]interface{}); ok {
		return passtools.RawResponse(object), nil
	}

	return passtools.RawResponse{passtools.ItemsKey: value}, nil
}

type authParams struct {
	APIKey string `url:"api_key"`
}

// Do validates the settings and performs the request. A non-2xx status
// returns the response together with a *passtools.APIError; a failure to
// reach the server returns a *passtools.TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	config, err := c.settings.RequireAPI(req.operation())
	if err != nil {
		return nil, err
	}

	fullURL, redacted, err := buildURL(config, req)
	if err != nil {
		return nil, err
	}

	var body interface{}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = data
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    redacted,
	})

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &passtools.TransportError{Method: req.Method, URL: redacted, Err: unwrapURLError(err)}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &passtools.TransportError{Method: req.Method, URL: redacted, Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"url":         redacted,
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &passtools.APIError{
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp),
		}
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: params})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request. A nil body sends no body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// buildURL returns the request URL and a copy without the API key for logs
// and errors.
func buildURL(config passtools.Configuration, req *Request) (string, string, error) {
	base := strings.TrimSuffix(strings.TrimSpace(config.URL), "/")

	parsed, err := url.Parse(base + req.Path)
	if err != nil {
		return "", "", fmt.Errorf("parsing request URL: %w", err)
	}

	values := parsed.Query()
	for key, vals := range req.Query {
		for _, val := range vals {
			values.Add(key, val)
		}
	}

	parsed.RawQuery = values.Encode()
	redacted := parsed.String()

	auth, err := query.Values(authParams{APIKey: config.APIKey})
	if err != nil {
		return "", "", fmt.Errorf("encoding API key: %w", err)
	}

	for key, vals := range auth {
		values[key] = vals
	}

	parsed.RawQuery = values.Encode()

	return parsed.String(), redacted, nil
}

// statusMessage formats "<status code> <status text>".
func statusMessage(resp *Response) string {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		status := strings.TrimSpace(resp.Status)
		if status != "" {
			return status
		}
	}

	return strings.TrimSpace(fmt.Sprintf("%d %s", resp.StatusCode, text))
}

// unwrapURLError drops *url.Error, whose message embeds the full URL and
// with it the API key.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// leveledLogger adapts passtools.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger passtools.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		value := keysAndValues[i+1]

		// retryablehttp logs the request URL, which carries the API key.
		if req, ok := value.(*http.Request); ok {
			value = req.Method + " " + req.URL.Path
		}

		if u, ok := value.(*url.URL); ok {
			value = u.Path
		}

		if s, ok := value.(string); ok && key == "url" {
			value, _, _ = strings.Cut(s, "?")
		}

		fields[key] = value
	}

	return fields
}
