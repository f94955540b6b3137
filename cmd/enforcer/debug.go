package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/enforcer/internal/schema"
)

var (
	schemaOutput  string
	schemaCompact bool
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug enforcer configuration",
	Long: `Debug enforcer configuration and internal state.

Subcommands:
  schema  Print the JSON Schema of the configuration file
  crash   Manage crash dumps`,
}

var debugSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON Schema",
	Long: `Print the JSON Schema describing enforcer configuration files.

Examples:
  enforcer debug schema                      # Print to stdout
  enforcer debug schema -o enforcer.json     # Write to a file
  enforcer debug schema --compact            # Single line`,
	Args: cobra.NoArgs,
	RunE: runDebugSchema,
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugSchemaCmd)
	debugCmd.AddCommand(debugCrashCmd)
	debugCrashCmd.AddCommand(debugCrashListCmd)
	debugCrashCmd.AddCommand(debugCrashViewCmd)
	debugCrashCmd.AddCommand(debugCrashCleanCmd)

	debugSchemaCmd.Flags().StringVarP(
		&schemaOutput,
		"output",
		"o",
		"",
		"Write the schema to this file instead of stdout",
	)
	debugSchemaCmd.Flags().BoolVar(
		&schemaCompact,
		"compact",
		false,
		"Emit compact JSON",
	)
}

func runDebugSchema(cmd *cobra.Command, _ []string) error {
	data, err := schema.GenerateJSON(!schemaCompact)
	if err != nil {
		return errors.Wrap(err, "failed to generate schema")
	}

	if schemaOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)

		return err
	}

	//nolint:gosec // schema is public
	if err := os.WriteFile(schemaOutput, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", schemaOutput)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", schemaOutput)

	return nil
}
