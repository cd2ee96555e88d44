//go:build integration

package integration

import (
	"os"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/passtools/passtools-go/pkg/passtools"
	"github.com/passtools/passtools-go/pkg/ptclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL        string
	APIKey     string
	TemplateID int64
	PassID     int64
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	templateID, _ := strconv.ParseInt(os.Getenv("PASSTOOLS_TEMPLATE_ID"), 10, 64)
	passID, _ := strconv.ParseInt(os.Getenv("PASSTOOLS_PASS_ID"), 10, 64)

	return &TestConfig{
		URL:        os.Getenv("PASSTOOLS_URL"),
		APIKey:     os.Getenv("PASSTOOLS_API_KEY"),
		TemplateID: templateID,
		PassID:     passID,
		Verbose:    os.Getenv("PASSTOOLS_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.APIKey == "" {
		t.Skip("PASSTOOLS_URL or PASSTOOLS_API_KEY not set, skipping integration test")
	}
}

// NewClient creates a client against the configured API with downloads in a temp dir.
func (config *TestConfig) NewClient(t *testing.T) passtools.Client {
	t.Helper()

	logger := zerolog.Nop()
	if config.Verbose {
		logger = zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	}

	client, err := ptclient.NewWithConfiguration(
		passtools.Configuration{URL: config.URL, APIKey: config.APIKey, DownloadDir: t.TempDir()},
		ptclient.WithLogger(passtools.NewZerologLogger(logger)),
		ptclient.WithDebug(config.Verbose),
		ptclient.WithRetry(2),
	)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}
