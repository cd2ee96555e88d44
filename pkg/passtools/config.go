package passtools

import (
	"os"
	"strings"
	"sync"
)

// DownloadDirMessage is the message returned when downloads cannot be written.
const DownloadDirMessage = "Download directory is not defined or does not exist"

// Configuration is a point-in-time copy of the client settings.
type Configuration struct {
	URL         string `json:"url"                    yaml:"url"`
	APIKey      string `json:"api_key"                yaml:"api_key"`
	DownloadDir string `json:"download_dir,omitempty" yaml:"download_dir,omitempty"`
}

// Options is a partial update for Settings. A nil field keeps the current
// value; a pointer to the empty string clears it.
type Options struct {
	URL         *string
	APIKey      *string
	DownloadDir *string
}

// String returns a pointer to s, for building Options.
func String(s string) *string {
	return &s
}

// Settings holds the configuration shared by the dispatcher and the resource
// client. Nothing is validated when it is configured; each call checks the
// settings it needs.
type Settings struct {
	mutex  sync.RWMutex
	config Configuration
}

// NewSettings creates settings from an initial configuration.
func NewSettings(config Configuration) *Settings {
	return &Settings{config: config}
}

// Configure merges opts into the current settings.
func (s *Settings) Configure(opts Options) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if opts.URL != nil {
		s.config.URL = *opts.URL
	}

	if opts.APIKey != nil {
		s.config.APIKey = *opts.APIKey
	}

	if opts.DownloadDir != nil {
		s.config.DownloadDir = *opts.DownloadDir
	}
}

// Snapshot returns a copy of the current configuration.
func (s *Settings) Snapshot() Configuration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.config
}

// RequireAPI returns the current configuration if both the API url and key
// are set. operation names the call in the error message.
func (s *Settings) RequireAPI(operation string) (Configuration, error) {
	config := s.Snapshot()

	if strings.TrimSpace(config.URL) == "" {
		return config, NewConfigurationError(SettingURL, operation)
	}

	if config.APIKey == "" {
		return config, NewConfigurationError(SettingAPIKey, operation)
	}

	return config, nil
}

// RequireDownloadDir returns the download directory if it is set and exists.
func (s *Settings) RequireDownloadDir() (string, error) {
	dir := s.Snapshot().DownloadDir
	if dir == "" {
		return "", &ConfigurationError{Setting: SettingDownloadDir, Message: DownloadDirMessage}
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &ConfigurationError{Setting: SettingDownloadDir, Message: DownloadDirMessage}
	}

	return dir, nil
}
