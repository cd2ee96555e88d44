package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/passtools/passtools-go/pkg/passtools"
)

// recordedRequest is what the fake PassTools server saw.
type recordedRequest struct {
	Method string
	Path   string
	APIKey string
	Body   string
}

// fakeServer answers every request with statusCode and body and records it.
type fakeServer struct {
	*httptest.Server

	mutex    sync.Mutex
	requests []recordedRequest
}

func newFakeServer(t *testing.T, statusCode int, body interface{}) *fakeServer {
	t.Helper()

	fake := &fakeServer{}
	fake.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		data, err := io.ReadAll(request.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}

		fake.mutex.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			Method: request.Method,
			Path:   request.URL.Path,
			APIKey: request.URL.Query().Get("api_key"),
			Body:   string(data),
		})
		fake.mutex.Unlock()

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(statusCode)

		if body != nil {
			_ = json.NewEncoder(writer).Encode(body)
		}
	}))
	t.Cleanup(fake.Close)

	return fake
}

func (f *fakeServer) recorded() []recordedRequest {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return append([]recordedRequest(nil), f.requests...)
}

// NewTestClient creates a client configured against baseURL.
func NewTestClient(t *testing.T, baseURL, downloadDir string) *Client {
	t.Helper()

	settings := passtools.NewSettings(passtools.Configuration{
		URL:         baseURL,
		APIKey:      "i_am_an_api_key",
		DownloadDir: downloadDir,
	})

	client, err := New(settings, nil)
	require.NoError(t, err)

	return client
}
