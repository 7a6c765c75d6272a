package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models of every enabled provider",
	Long: `Query the model-listing endpoint of every enabled provider and print the
results. A provider that cannot be reached, rejects the API key or answers
with an unexpected body is listed with no models.

The selected model is marked with an asterisk.`,
	RunE: runModels,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the enabled providers",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(providersCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s := a.settings.Snapshot()
	listed := a.directory().ListAll(commandContext(cmd), s)

	out := cmd.OutOrStdout()
	for _, kind := range s.EnabledProviders() {
		models := listed[kind]
		fmt.Fprintf(out, "%s (%d)\n", kind.DisplayName(), len(models))
		for _, model := range models {
			marker := " "
			if kind == s.Provider() && model == s.SelectedModel {
				marker = "*"
			}
			fmt.Fprintf(out, " %s %s\n", marker, model)
		}
	}
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s := a.settings.Snapshot()
	table := uitable.New()
	table.MaxColWidth = 80
	table.Separator = "  "
	for _, kind := range s.EnabledProviders() {
		marker := " "
		if kind == s.Provider() {
			marker = "*"
		}

		cfg := s.ConnectionConfig(kind)
		status := cfg.Endpoint()
		if err := cfg.Validate(); err != nil {
			status = err.Error()
		}
		table.AddRow(marker+" "+string(kind), kind.DisplayName(), status)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}
