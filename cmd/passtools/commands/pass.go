package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/passtools/passtools-go/internal/constants"
	"github.com/passtools/passtools-go/pkg/passtools"
	"github.com/passtools/passtools-go/pkg/ptclient"
)

// NewPassCommand creates the pass command group.
func NewPassCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pass",
		Aliases: []string{"passes"},
		Short:   "Manage passes",
		Long:    "List, create, update, push, delete and download PassTools passes",
	}

	cmd.AddCommand(newPassListCommand())
	cmd.AddCommand(newPassShowCommand())
	cmd.AddCommand(newPassCreateCommand())
	cmd.AddCommand(newPassUpdateCommand())
	cmd.AddCommand(newPassPushCommand())
	cmd.AddCommand(newPassDeleteCommand())
	cmd.AddCommand(newPassDownloadCommand())
	cmd.AddCommand(newPassFieldsCommand())
	cmd.AddCommand(newPassSetFieldCommand())

	return cmd
}

func newPassListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List passes",
		Long:  "List all passes of the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			raw, err := client.Passes().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list passes: %w", err)
			}

			return renderRawResponse(cmd, raw, "failed to list passes")
		},
	}
}

func newPassShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show PASS_ID",
		Short: "Show pass details",
		Long:  "Display the raw data of a specific pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePassID(args[0])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			raw, err := client.Passes().Show(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get pass %d: %w", id, err)
			}

			return renderRawResponse(cmd, raw, fmt.Sprintf("failed to get pass %d", id))
		},
	}
}

func newPassCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create TEMPLATE_ID",
		Short: "Create a pass",
		Long:  "Create a pass from a template. --data takes a JSON object or @file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePassID(args[0])
			if err != nil {
				return err
			}

			attrs, err := parsePassData(data)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Passes().Create(cmd.Context(), id, attrs)
			if err != nil {
				return fmt.Errorf("failed to create pass from template %d: %w", id, err)
			}

			return renderWriteResult(cmd, "create", id, result)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "pass attributes as JSON, or @file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newPassUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update PASS_ID",
		Short: "Update a pass",
		Long:  "Update a pass. --data takes a JSON object or @file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePassID(args[0])
			if err != nil {
				return err
			}

			attrs, err := parsePassData(data)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Passes().Update(cmd.Context(), id, attrs)
			if err != nil {
				return fmt.Errorf("failed to update pass %d: %w", id, err)
			}

			return renderWriteResult(cmd, "update", id, result)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "pass attributes as JSON, or @file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newPassPushCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "push PASS_ID...",
		Short: "Push passes to devices",
		Long:  "Push the current version of one or more passes to the devices holding them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePassIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd, ptclient.WithConcurrency(concurrency))
			if err != nil {
				return err
			}

			results, err := client.Passes().PushAll(cmd.Context(), ids)
			if err != nil {
				return fmt.Errorf("failed to push passes: %w", err)
			}

			return renderPushResults(cmd, ids, results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "parallel push requests")

	return cmd
}

func newPassDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete PASS_ID",
		Short: "Delete a pass",
		Long:  "Delete a pass permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePassID(args[0])
			if err != nil {
				return err
			}

			if !force && !confirm(cmd, fmt.Sprintf("Really delete pass %d?", id)) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")

				return nil
			}

			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Passes().Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete pass %d: %w", id, err)
			}

			return renderWriteResult(cmd, "delete", id, result)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}

func newPassDownloadCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download PASS_ID",
		Short: "Download a pass bundle",
		Long:  "Download a pass to " + constants.DownloadFileName + " in the download directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePassID(args[0])
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			if dir != "" {
				client.Settings().Configure(passtools.Options{DownloadDir: passtools.String(dir)})
			}

			path, err := client.Passes().Download(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to download pass %d: %w", id, err)
			}

			result := map[string]interface{}{"id": id, "path": path}

			return renderOutput(cmd.OutOrStdout(), result, func() error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Pass %d downloaded to %s\n", id, path)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "download directory (overrides download_dir)")

	return cmd
}

// passFieldView is one row of the fields output.
type passFieldView struct {
	Name     string      `json:"name"     yaml:"name"`
	Key      string      `json:"key"      yaml:"key"`
	Value    interface{} `json:"value"    yaml:"value"`
	Required bool        `json:"required" yaml:"required"`
}

func newPassFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields PASS_ID",
		Short: "Show pass fields",
		Long:  "Fetch a pass and display its fields by member name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			pass, err := fetchPass(cmd, client, args[0])
			if err != nil {
				return err
			}

			views := make([]passFieldView, 0, len(pass.Keys()))

			for _, key := range pass.Keys() {
				field, _ := pass.Field(key)
				views = append(views, passFieldView{
					Name:     pass.AccessorName(key),
					Key:      key,
					Value:    field.Value,
					Required: field.Required,
				})
			}

			return renderOutput(cmd.OutOrStdout(), views, func() error {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pass %d (template %d):\n", pass.ID(), pass.TemplateID())

				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Name", "Key", "Value", "Required")

				for _, view := range views {
					_ = table.Append([]string{view.Name, view.Key, formatValue(view.Value), strconv.FormatBool(view.Required)})
				}

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

func newPassSetFieldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-field PASS_ID FIELD VALUE",
		Short: "Set a pass field",
		Long:  "Fetch a pass, set one field value by member name or key and save it",
		Args:  cobra.ExactArgs(3), //nolint:mnd // id, field and value
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd)
			if err != nil {
				return err
			}

			pass, err := fetchPass(cmd, client, args[0])
			if err != nil {
				return err
			}

			err = pass.SetValue(args[1], args[2])
			if err != nil {
				return fmt.Errorf("%w: %s (available: %v)", err, args[1], pass.FieldNames())
			}

			result, err := client.Passes().Save(cmd.Context(), pass)
			if err != nil {
				return fmt.Errorf("failed to save pass %d: %w", pass.ID(), err)
			}

			return renderWriteResult(cmd, "update", pass.ID(), result)
		},
	}
}

// fetchPass builds a Pass from the current server state. An error payload is
// reported as an error.
func fetchPass(cmd *cobra.Command, client passtools.Client, arg string) (*passtools.Pass, error) {
	id, err := parsePassID(arg)
	if err != nil {
		return nil, err
	}

	pass, err := client.Passes().BuildFromCurrent(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pass %d: %w", id, err)
	}

	if !pass.Valid() {
		return nil, fmt.Errorf("failed to get pass %d: %w", id, pass.RawData().Err())
	}

	return pass, nil
}

func renderRawResponse(cmd *cobra.Command, raw passtools.RawResponse, failure string) error {
	err := renderOutput(cmd.OutOrStdout(), raw, func() error {
		return renderRawTable(cmd.OutOrStdout(), raw)
	})
	if err != nil {
		return err
	}

	if apiErr := raw.Err(); apiErr != nil {
		return fmt.Errorf("%s: %w", failure, apiErr)
	}

	return nil
}

func renderWriteResult(cmd *cobra.Command, action string, id int64, result *passtools.WriteResult) error {
	err := renderOutput(cmd.OutOrStdout(), result, func() error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Property", "Value")

		_ = table.Append([]string{"Action", action})
		_ = table.Append([]string{"Pass", strconv.FormatInt(id, 10)})
		_ = table.Append([]string{"Success", strconv.FormatBool(result.OK())})
		_ = table.Append([]string{"Status Code", strconv.Itoa(result.StatusCode)})

		if result.Error != nil {
			_ = table.Append([]string{"Error", result.Error.Message})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return writeResultError(action, id, result)
}

func renderPushResults(cmd *cobra.Command, ids []int64, results map[int64]*passtools.WriteResult) error {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	err := renderOutput(cmd.OutOrStdout(), results, func() error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Pass", "Success", "Status Code", "Error")

		for _, id := range sorted {
			result := results[id]
			message := ""

			if result != nil && result.Error != nil {
				message = result.Error.Message
			}

			code := NotAvailable
			if result != nil {
				code = strconv.Itoa(result.StatusCode)
			}

			_ = table.Append([]string{strconv.FormatInt(id, 10), strconv.FormatBool(result.OK()), code, message})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range sorted {
		if err := writeResultError("push", id, results[id]); err != nil {
			return err
		}
	}

	return nil
}
