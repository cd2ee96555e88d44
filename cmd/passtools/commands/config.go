package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/passtools/passtools-go/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	URL         string `json:"url,omitempty"          yaml:"url,omitempty"`
	APIKey      string `json:"api_key,omitempty"      yaml:"api_key,omitempty"`
	DownloadDir string `json:"download_dir,omitempty" yaml:"download_dir,omitempty"`
	Output      string `json:"output,omitempty"       yaml:"output,omitempty"`
	Retries     int    `json:"retries,omitempty"      yaml:"retries,omitempty"`
	NoColor     bool   `json:"no_color,omitempty"     yaml:"no_color,omitempty"`
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = []string{"url", "api_key", "download_dir", "output", "retries", "no_color"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage the PassTools API url, API key and download directory used by the CLI",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration. The API key is masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIKey = maskSecret(config.APIKey)

			return renderOutput(cmd.OutOrStdout(), config, func() error {
				return displayConfigTable(cmd, config)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set a configuration value",
		Long: "Set a configuration value (" + strings.Join(configKeys, ", ") + "). " +
			"Without a value, api_key is read from the terminal",
		Args: cobra.RangeArgs(1, constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value string

			switch {
			case len(args) == constants.MinimumArgumentCount:
				value = args[1]
			case key == "api_key":
				secret, err := promptSecret(cmd, "API key: ")
				if err != nil {
					return err
				}

				value = secret
			default:
				return fmt.Errorf("%w: %s", constants.ErrMissingConfigValue, key)
			}

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set(key, value)

			shown := value
			if key == "api_key" {
				shown = maskSecret(value)
			}

			return outputConfigUpdateResult(cmd, "Set", key, shown)
		},
	}

	// Values such as "-1" come after the key and are arguments, not flags.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value (" + strings.Join(configKeys, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			viper.Set(key, "")

			return outputConfigUpdateResult(cmd, "Unset", key, "")
		},
	}
}

func loadConfig() *Config {
	return &Config{
		URL:         viper.GetString("url"),
		APIKey:      viper.GetString("api_key"),
		DownloadDir: viper.GetString("download_dir"),
		Output:      viper.GetString("output"),
		Retries:     viper.GetInt("retries"),
		NoColor:     viper.GetBool("no_color"),
	}
}

// configFilePath returns the file config set and unset write to.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+".yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "url":
		config.URL = strings.TrimSpace(value)
	case "api_key":
		if value == "" {
			return constants.ErrEmptyAPIKey
		}

		config.APIKey = value
	case "download_dir":
		config.DownloadDir = value
	case "output":
		if !isOutputFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}

		config.Output = value
	case "retries":
		retries, err := parseRetries(value)
		if err != nil {
			return err
		}

		config.Retries = retries
	case "no_color":
		config.NoColor = parseBoolValue(value)
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "url":
		config.URL = ""
	case "api_key":
		config.APIKey = ""
	case "download_dir":
		config.DownloadDir = ""
	case "output":
		config.Output = ""
	case "retries":
		config.Retries = 0
	case "no_color":
		config.NoColor = false
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	return nil
}

func isOutputFormat(value string) bool {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	}

	return false
}

func parseRetries(value string) (int, error) {
	retries, err := cast.ToIntE(strings.TrimSpace(value))
	if err != nil || retries < 0 {
		return 0, fmt.Errorf("%w: %s", constants.ErrInvalidRetries, value)
	}

	return retries, nil
}

// parseBoolValue parses a boolean value from string.
func parseBoolValue(value string) bool {
	value = strings.ToLower(value)

	return value == "true" || value == "1" || value == Yes
}

// promptSecret reads a secret without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

	file, ok := cmd.InOrStdin().(*os.File)
	if ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))

		_, _ = fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	var secret string

	_, _ = fmt.Fscanln(cmd.InOrStdin(), &secret)

	return strings.TrimSpace(secret), nil
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Property", "Value")

	_ = table.Append([]string{"URL", formatConfigValue(config.URL)})
	_ = table.Append([]string{"API Key", formatConfigValue(config.APIKey)})
	_ = table.Append([]string{"Download Directory", formatConfigValue(config.DownloadDir)})
	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"Retries", fmt.Sprint(config.Retries)})
	_ = table.Append([]string{"No Color", fmt.Sprint(config.NoColor)})

	if file := viper.ConfigFileUsed(); file != "" {
		_ = table.Append([]string{"Config File", file})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

// outputConfigUpdateResult outputs configuration update results in the requested format.
func outputConfigUpdateResult(cmd *cobra.Command, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	return renderOutput(cmd.OutOrStdout(), result, func() error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Property", "Value")

		_ = table.Append([]string{"Action", action})
		_ = table.Append([]string{"Key", key})

		if value != "" {
			_ = table.Append([]string{"Value", value})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render update results table: %w", err)
		}

		return nil
	})
}
