package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadFilePerm is the permission for downloaded pass files.
	DownloadFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits. Retries are disabled unless RetryMax is set.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent pushes in PushAll.
	DefaultConcurrencyLimit = 4
)

// API paths.
const (
	// APIPathPass is the pass collection.
	APIPathPass = "/pass"

	// APIKeyParam is the query parameter carrying the API key.
	APIKeyParam = "api_key"
)

// Download output.
const (
	// DownloadFileName is the file written by Download.
	DownloadFileName = "PassToolsPass.pkpass"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the indent of JSON output.
	JSONIndentSize = 2
)

// Command line.
const (
	// EnvPrefix is the prefix of environment variables read by the CLI.
	EnvPrefix = "PASSTOOLS"

	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".passtools"

	// ConfigFileName is the CLI config file name without extension.
	ConfigFileName = "config"

	// MinimumArgumentCount is the argument count of "config set KEY VALUE".
	MinimumArgumentCount = 2
)
