package passtools

import (
	"context"

	"github.com/spf13/cast"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// RawResponse is a decoded JSON response body. On HTTP failure it holds the
// error payload {"message": "<status> <status text>", "statusCode": <code>}.
type RawResponse map[string]interface{}

// ItemsKey holds a success body that is JSON but not an object, such as a
// list returned as a bare array.
const ItemsKey = "items"

// Message returns the error message carried by the response, if any.
func (r RawResponse) Message() (string, bool) {
	value, ok := r["message"]
	if !ok || value == nil {
		return "", false
	}

	return cast.ToString(value), true
}

// IsError reports whether the response is an error payload. Both message
// and a status code are required, so a success body that happens to carry
// a message field is not mistaken for a failure.
func (r RawResponse) IsError() bool {
	_, ok := r.Message()

	return ok && r.StatusCode() != 0
}

// StatusCode returns the status code of an error payload, or 0.
func (r RawResponse) StatusCode() int {
	return cast.ToInt(r["statusCode"])
}

// Err returns the error payload as an APIError, or nil for a success payload.
func (r RawResponse) Err() *APIError {
	if !r.IsError() {
		return nil
	}

	msg, _ := r.Message()

	return &APIError{StatusCode: r.StatusCode(), Message: msg}
}

// Field is one entry of a pass's field map.
type Field struct {
	Value    interface{} `json:"value"    yaml:"value"`
	Required bool        `json:"required" yaml:"required"`
}

// WriteResult is the outcome of create, update, push and delete. HTTP
// failures are reported here rather than as an error.
type WriteResult struct {
	Success    bool      `json:"success"         yaml:"success"`
	StatusCode int       `json:"status_code"     yaml:"status_code"`
	Error      *APIError `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the server accepted the write.
func (r *WriteResult) OK() bool {
	return r != nil && r.Success
}

// PassesClient provides access to the /pass resource.
type PassesClient interface {
	List(ctx context.Context) (RawResponse, error)
	Show(ctx context.Context, id int64) (RawResponse, error)
	Create(ctx context.Context, id int64, attrs interface{}) (*WriteResult, error)
	Update(ctx context.Context, id int64, attrs interface{}) (*WriteResult, error)
	Push(ctx context.Context, id int64) (*WriteResult, error)
	Delete(ctx context.Context, id int64) (*WriteResult, error)
	Download(ctx context.Context, id int64) (string, error)
	BuildFromCurrent(ctx context.Context, id int64) (*Pass, error)
	Save(ctx context.Context, pass *Pass) (*WriteResult, error)
	PushAll(ctx context.Context, ids []int64) (map[int64]*WriteResult, error)
}

// Client is the PassTools API client.
type Client interface {
	Passes() PassesClient
	Settings() *Settings
}
