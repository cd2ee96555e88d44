package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/passtools/passtools-go/internal/constants"
	"github.com/passtools/passtools-go/pkg/passtools"
	"github.com/passtools/passtools-go/pkg/ptclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"

	userAgent = "passtools-cli"
)

// NewLogger builds the CLI logger. Verbose output switches to debug level
// and turns on request logging in the client.
func NewLogger(out io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	if strings.EqualFold(viper.GetString("log_format"), constants.FormatJSON) {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    viper.GetBool("no_color"),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// loadConfiguration reads the client settings from flags, environment and
// the config file.
func loadConfiguration() passtools.Configuration {
	return passtools.Configuration{
		URL:         viper.GetString("url"),
		APIKey:      viper.GetString("api_key"),
		DownloadDir: viper.GetString("download_dir"),
	}
}

// CreateClient creates a PassTools client from the current configuration.
func CreateClient(cmd *cobra.Command, opts ...ptclient.Option) (passtools.Client, error) {
	logger := NewLogger(cmd.ErrOrStderr())

	options := []ptclient.Option{
		ptclient.WithLogger(passtools.NewZerologLogger(logger)),
		ptclient.WithDebug(viper.GetBool("verbose")),
		ptclient.WithUserAgent(userAgent),
	}

	if retries := viper.GetInt("retries"); retries > 0 {
		options = append(options, ptclient.WithRetry(retries))
	}

	options = append(options, opts...)

	client, err := ptclient.NewWithConfiguration(loadConfiguration(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// parsePassID parses a positive pass or template id.
func parsePassID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", passtools.ErrInvalidPassID, arg)
	}

	return id, nil
}

func parsePassIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))

	for _, arg := range args {
		id, err := parsePassID(arg)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// parsePassData decodes the --data flag. A value starting with @ names a file.
func parsePassData(data string) (map[string]interface{}, error) {
	raw := []byte(data)

	if strings.HasPrefix(data, "@") {
		// #nosec G304 -- the path is supplied by the user running the CLI
		content, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read pass data: %w", err)
		}

		raw = content
	}

	attrs := map[string]interface{}{}

	err := json.Unmarshal(raw, &attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidPassData, err)
	}

	return attrs, nil
}

// writeResultError turns a rejected write into an error so the CLI exits non-zero.
func writeResultError(action string, id int64, result *passtools.WriteResult) error {
	if result.OK() {
		return nil
	}

	message := NotAvailable
	if result != nil && result.Error != nil {
		message = result.Error.Message
	}

	return fmt.Errorf("%s pass %d: %w: %s", action, id, constants.ErrWriteRejected, message)
}

// renderOutput writes data as JSON or YAML, or calls renderTable.
func renderOutput(out io.Writer, data interface{}, renderTable func() error) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return renderJSON(out, data)
	case constants.FormatYAML:
		return renderYAML(out, data)
	default:
		return renderTable()
	}
}

func renderJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func renderYAML(out io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(out)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

// renderRawTable prints the top-level keys of a response as a two-column table.
func renderRawTable(out io.Writer, raw passtools.RawResponse) error {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, formatValue(raw[key])})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// formatValue renders a decoded JSON value for a table cell.
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	}

	return cast.ToString(value)
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(secret string) string {
	const visible = 4

	if secret == "" {
		return ""
	}

	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}

	return strings.Repeat("*", len(secret)-visible) + secret[len(secret)-visible:]
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	var answer string

	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == Yes
}
