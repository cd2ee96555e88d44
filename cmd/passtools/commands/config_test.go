package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/passtools/passtools-go/internal/constants"
)

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)

	for _, name := range []string{"show", "set", "unset"} {
		sub := findSubcommand(cmd, name)
		require.NotNil(t, sub, "subcommand %s should exist", name)
		assert.NotNil(t, sub.RunE)
		assert.NotNil(t, sub.Args)
	}
}

// setupConfigFile points viper at a config file in a temp directory.
func setupConfigFile(t *testing.T, values map[string]interface{}) string {
	t.Helper()

	setupViper(t, values)

	file := filepath.Join(t.TempDir(), "nested", "config.yml")
	viper.SetConfigFile(file)

	return file
}

func readConfigFile(t *testing.T, file string) Config {
	t.Helper()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var config Config
	require.NoError(t, yaml.Unmarshal(data, &config))

	return config
}

func TestConfigSetCommand(t *testing.T) {
	file := setupConfigFile(t, map[string]interface{}{"url": "http://foobar.com"})

	_, err := executeCommand(t, NewConfigCommand(), "", "set", "download_dir", "/tmp/passes")
	require.NoError(t, err)

	config := readConfigFile(t, file)
	assert.Equal(t, "http://foobar.com", config.URL)
	assert.Equal(t, "/tmp/passes", config.DownloadDir)
	assert.Equal(t, "/tmp/passes", viper.GetString("download_dir"))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
}

func TestConfigSetCommand_APIKeyPrompt(t *testing.T) {
	file := setupConfigFile(t, nil)

	out, err := executeCommand(t, NewConfigCommand(), "i_am_an_api_key\n", "set", "api_key")
	require.NoError(t, err)
	assert.NotContains(t, out, "i_am_an_api_key")
	assert.Contains(t, out, "*******_key")

	assert.Equal(t, "i_am_an_api_key", readConfigFile(t, file).APIKey)
}

func TestConfigSetCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
	}{
		{name: "unknown key", args: []string{"set", "token", "x"}, err: constants.ErrUnknownConfigKey},
		{name: "missing value", args: []string{"set", "url"}, err: constants.ErrMissingConfigValue},
		{name: "invalid output", args: []string{"set", "output", "xml"}, err: constants.ErrInvalidOutputFormat},
		{name: "negative retries", args: []string{"set", "retries", "-1"}, err: constants.ErrInvalidRetries},
		{name: "negative retries after separator", args: []string{"set", "--", "retries", "-1"}, err: constants.ErrInvalidRetries},
		{name: "non-numeric retries", args: []string{"set", "retries", "abc"}, err: constants.ErrInvalidRetries},
		{name: "empty api key", args: []string{"set", "api_key", ""}, err: constants.ErrEmptyAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := setupConfigFile(t, nil)

			_, err := executeCommand(t, NewConfigCommand(), "", tt.args...)
			require.ErrorIs(t, err, tt.err)

			_, statErr := os.Stat(file)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestConfigSetCommand_Retries(t *testing.T) {
	file := setupConfigFile(t, nil)

	_, err := executeCommand(t, NewConfigCommand(), "", "set", "retries", "3")
	require.NoError(t, err)

	assert.Equal(t, 3, readConfigFile(t, file).Retries)
	assert.Equal(t, 3, viper.GetInt("retries"))
}

func TestConfigUnsetCommand(t *testing.T) {
	file := setupConfigFile(t, map[string]interface{}{
		"url":     "http://foobar.com",
		"api_key": "i_am_an_api_key",
	})

	_, err := executeCommand(t, NewConfigCommand(), "", "unset", "api_key")
	require.NoError(t, err)

	config := readConfigFile(t, file)
	assert.Empty(t, config.APIKey)
	assert.Equal(t, "http://foobar.com", config.URL)
	assert.Empty(t, viper.GetString("api_key"))

	t.Run("unknown key", func(t *testing.T) {
		_, err := executeCommand(t, NewConfigCommand(), "", "unset", "token")
		require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
	})
}

func TestConfigShowCommand(t *testing.T) {
	setupViper(t, map[string]interface{}{
		"url":     "http://foobar.com",
		"api_key": "i_am_an_api_key",
		"output":  constants.FormatJSON,
	})

	out, err := executeCommand(t, NewConfigCommand(), "", "show")
	require.NoError(t, err)

	var config Config
	require.NoError(t, json.Unmarshal([]byte(out), &config))
	assert.Equal(t, "http://foobar.com", config.URL)
	assert.Equal(t, "***********_key", config.APIKey)
}

func TestMaskSecret(t *testing.T) {
	assert.Empty(t, maskSecret(""))
	assert.Equal(t, "***", maskSecret("abc"))
	assert.Equal(t, "****5678", maskSecret("12345678"))
}
